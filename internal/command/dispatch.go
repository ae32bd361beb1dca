package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/audit"
	"github.com/cloudmeet/agent-bot-go/internal/config"
	apperrors "github.com/cloudmeet/agent-bot-go/internal/errors"
	"github.com/cloudmeet/agent-bot-go/internal/model"
	"github.com/cloudmeet/agent-bot-go/internal/service"
)

const maxAdminSlots = config.MaxBoundAdmins

const (
	msgRateLimited  = "⏳ 操作过于频繁，请稍后再试"
	msgRootOnly     = "⛔ 该命令仅限 ROOT 使用"
	msgGenericError = "❌ 操作失败，请稍后再试"
)

// Dispatcher routes one chat request to the matching operation and renders
// the reply. It is transport-agnostic: handlers build a Request and forward
// the Reply back over whatever chat API carried the update.
type Dispatcher struct {
	roles     *service.RoleService
	inventory *service.InventoryService
	reconcile *service.ReconcileService
	limiter   *service.RateLimiter
	listLimit int
}

func NewDispatcher(
	roles *service.RoleService,
	inventory *service.InventoryService,
	reconcile *service.ReconcileService,
	limiter *service.RateLimiter,
	listLimit int,
) *Dispatcher {
	return &Dispatcher{
		roles:     roles,
		inventory: inventory,
		reconcile: reconcile,
		limiter:   limiter,
		listLimit: listLimit,
	}
}

// Handle processes one inbound request end to end. Every request is tracked
// before authorization so the root can see who knocked even when refused.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Reply {
	if err := d.roles.Track(ctx, model.TrackUserParams{
		TelegramID: req.UserID,
		Username:   req.Username,
		FirstName:  req.FirstName,
	}); err != nil {
		log.Error().Err(err).Int64("userId", req.UserID).Msg("user tracking failed")
	}

	if d.limiter != nil {
		if allowed, _ := d.limiter.Allow(ctx, req.UserID); !allowed {
			audit.Log(audit.Event{Type: audit.EventRateLimitHit, UserID: req.UserID})
			return Reply{Text: msgRateLimited}
		}
	}

	role, err := d.roles.Role(ctx, req.UserID)
	if err != nil {
		log.Error().Err(err).Int64("userId", req.UserID).Msg("role lookup failed")
		return Reply{Text: msgGenericError}
	}

	if HasCodeMarker(req.Text) {
		return d.ingest(ctx, req, role)
	}

	if IsCommand(req.Text) {
		return d.dispatchCommand(ctx, req, role)
	}

	switch req.Text {
	case ButtonClaim:
		return d.claim(ctx, req, role)
	case ButtonQuery:
		return d.query(ctx, req, role)
	case ButtonBind1, ButtonBind2:
		return d.selfBind(ctx, req)
	}

	return d.welcome(ctx, req, role)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, req Request, role model.Role) Reply {
	name, args := SplitCommand(req.Text)

	switch name {
	case "/start":
		return d.welcome(ctx, req, role)
	case "/bind":
		return d.bindByID(ctx, req, role, args)
	case "/kick":
		return d.kick(ctx, req, role, args)
	case "/unbind":
		return d.unbindSelf(ctx, req, role)
	case "/release":
		return d.release(ctx, req, role, args)
	case "/admin":
		return d.admin(ctx, req, role, args)
	}

	return d.welcome(ctx, req, role)
}

func (d *Dispatcher) welcome(ctx context.Context, req Request, role model.Role) Reply {
	adminCount := 0
	if !role.Authorized() {
		admins, err := d.roles.ListAdmins(ctx)
		if err != nil {
			log.Error().Err(err).Msg("admin listing failed")
			return Reply{Text: msgGenericError}
		}
		adminCount = len(admins)
	}
	return Reply{
		Text:     renderWelcome(req.FirstName, role, adminCount),
		Keyboard: MainKeyboard(role),
	}
}

func (d *Dispatcher) claim(ctx context.Context, req Request, role model.Role) Reply {
	if !role.Authorized() {
		return Reply{Text: renderNotAuthorized(req.UserID), Keyboard: MainKeyboard(role)}
	}

	code, err := d.inventory.Claim(ctx, req.UserID)
	if err != nil {
		switch {
		case apperrors.Is(err, apperrors.ErrCodeAlreadyHoldsCode):
			held, _ := apperrors.AsAppError(err)
			if existing, ok := held.Details.(string); ok {
				return Reply{Text: renderAlreadyClaimed(existing), Keyboard: MainKeyboard(role)}
			}
			return Reply{Text: "⚠️ 您已领取过授权码", Keyboard: MainKeyboard(role)}
		case apperrors.Is(err, apperrors.ErrCodeNoCodesAvailable):
			return Reply{Text: "❌ <b>暂无可用授权码</b>\n\n请联系管理员补充库存。", Keyboard: MainKeyboard(role)}
		}
		log.Error().Err(err).Int64("userId", req.UserID).Msg("claim failed")
		return Reply{Text: msgGenericError}
	}

	return Reply{Text: renderClaimSuccess(code.Code), Keyboard: MainKeyboard(role)}
}

func (d *Dispatcher) query(ctx context.Context, req Request, role model.Role) Reply {
	if !role.Authorized() {
		return Reply{Text: renderNotAuthorized(req.UserID), Keyboard: MainKeyboard(role)}
	}

	scope := req.UserID
	if role == model.RoleRoot {
		scope = -1
	}

	overview, err := d.reconcile.Overview(ctx, scope)
	if err != nil {
		log.Error().Err(err).Int64("userId", req.UserID).Msg("overview failed")
		return Reply{Text: msgGenericError}
	}

	stats, err := d.inventory.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stock stats failed")
		return Reply{Text: msgGenericError}
	}

	return Reply{Text: renderOverview(overview, stats.Available), Keyboard: MainKeyboard(role)}
}

func (d *Dispatcher) selfBind(ctx context.Context, req Request) Reply {
	result, err := d.roles.Bind(ctx, model.TrackUserParams{
		TelegramID: req.UserID,
		Username:   req.Username,
		FirstName:  req.FirstName,
	})
	if err != nil {
		log.Error().Err(err).Int64("userId", req.UserID).Msg("self-bind failed")
		return Reply{Text: msgGenericError}
	}

	switch result {
	case model.BindOK:
		return Reply{
			Text:     "✅ <b>绑定成功！</b>\n\n现在可以领取授权码了。",
			Keyboard: MainKeyboard(model.RoleAdmin),
		}
	case model.BindAlready, model.BindIsRoot:
		return Reply{Text: "✅ 您已绑定，无需重复操作", Keyboard: MainKeyboard(model.RoleAdmin)}
	case model.BindMax:
		return Reply{Text: fmt.Sprintf("⛔ <b>绑定名额已满（%d/%d）</b>\n\n请联系管理员处理。", maxAdminSlots, maxAdminSlots)}
	}
	return Reply{Text: msgGenericError}
}

func (d *Dispatcher) bindByID(ctx context.Context, req Request, role model.Role, args []string) Reply {
	if role != model.RoleRoot {
		return Reply{Text: msgRootOnly}
	}

	usage := "📝 用法：/bind &lt;Telegram ID&gt;\n例如：<code>/bind 123456789</code>"
	if len(args) == 0 {
		admins, err := d.roles.ListAdmins(ctx)
		if err != nil {
			log.Error().Err(err).Msg("admin listing failed")
			return Reply{Text: msgGenericError}
		}
		return Reply{Text: renderAdminList(admins, usage)}
	}

	targetID, ok := ParseID(args[0])
	if !ok {
		return Reply{Text: "❌ ID 格式错误\n\n" + usage}
	}

	params := model.TrackUserParams{TelegramID: targetID}
	if known, err := d.roles.Find(ctx, targetID); err == nil && known != nil {
		params.Username = known.Username
		params.FirstName = known.FirstName
	}

	result, err := d.roles.Bind(ctx, params)
	if err != nil {
		log.Error().Err(err).Int64("targetId", targetID).Msg("bind failed")
		return Reply{Text: msgGenericError}
	}

	switch result {
	case model.BindOK:
		return Reply{Text: fmt.Sprintf("✅ 已绑定 <code>%d</code> 为 Admin", targetID)}
	case model.BindAlready:
		return Reply{Text: fmt.Sprintf("⚠️ <code>%d</code> 已是 Admin", targetID)}
	case model.BindIsRoot:
		return Reply{Text: "⚠️ ROOT 无需绑定"}
	case model.BindMax:
		return Reply{Text: fmt.Sprintf("⛔ 绑定名额已满（%d/%d），请先 /kick 释放名额", maxAdminSlots, maxAdminSlots)}
	}
	return Reply{Text: msgGenericError}
}

func (d *Dispatcher) kick(ctx context.Context, req Request, role model.Role, args []string) Reply {
	if role != model.RoleRoot {
		return Reply{Text: msgRootOnly}
	}

	usage := "📝 用法：/kick &lt;Telegram ID&gt;\n例如：<code>/kick 123456789</code>"
	if len(args) == 0 {
		admins, err := d.roles.ListAdmins(ctx)
		if err != nil {
			log.Error().Err(err).Msg("admin listing failed")
			return Reply{Text: msgGenericError}
		}
		return Reply{Text: renderAdminList(admins, usage)}
	}

	targetID, ok := ParseID(args[0])
	if !ok {
		return Reply{Text: "❌ ID 格式错误\n\n" + usage}
	}

	if err := d.roles.Unbind(ctx, targetID, true); err != nil {
		switch {
		case apperrors.Is(err, apperrors.ErrCodeRootImmutable):
			return Reply{Text: "⛔ 不能踢出 ROOT"}
		case apperrors.Is(err, apperrors.ErrCodeNotFound):
			return Reply{Text: fmt.Sprintf("⚠️ <code>%d</code> 不是已绑定的 Admin", targetID)}
		}
		log.Error().Err(err).Int64("targetId", targetID).Msg("kick failed")
		return Reply{Text: msgGenericError}
	}

	return Reply{Text: fmt.Sprintf("✅ 已踢出 <code>%d</code>，名额已释放", targetID)}
}

func (d *Dispatcher) unbindSelf(ctx context.Context, req Request, role model.Role) Reply {
	if role == model.RoleRoot {
		return Reply{Text: "⚠️ ROOT 不可解绑"}
	}

	if err := d.roles.Unbind(ctx, req.UserID, false); err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotFound) {
			return Reply{Text: "⚠️ 您当前未绑定"}
		}
		log.Error().Err(err).Int64("userId", req.UserID).Msg("unbind failed")
		return Reply{Text: msgGenericError}
	}

	return Reply{
		Text:     "✅ 已解除绑定，名额已释放。\n\n如需再次使用请重新绑定。",
		Keyboard: MainKeyboard(model.RoleNone),
	}
}

// release reverts a code to the pool and best-effort ends its live meeting.
func (d *Dispatcher) release(ctx context.Context, req Request, role model.Role, args []string) Reply {
	if !role.Authorized() {
		return Reply{Text: renderNotAuthorized(req.UserID), Keyboard: MainKeyboard(role)}
	}

	if len(args) == 0 {
		return Reply{Text: "📝 用法：/release &lt;授权码&gt;\n例如：<code>/release ABC123</code>"}
	}

	code := model.NormalizeCode(args[0])
	if err := d.inventory.Release(ctx, code, req.UserID, role == model.RoleRoot); err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotCodeOwner) {
			return Reply{Text: fmt.Sprintf("⚠️ <code>%s</code> 不是您持有的授权码", code)}
		}
		log.Error().Err(err).Str("code", code).Msg("release failed")
		return Reply{Text: msgGenericError}
	}

	// The local record is already released; a remote failure here just leaves
	// the meeting to expire on its own.
	if err := d.reconcile.EndMeeting(ctx, code); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("remote meeting end failed after release")
		return Reply{
			Text:     fmt.Sprintf("✅ <code>%s</code> 已回收入库\n⚠️ 远端会议结束失败，将自行到期", code),
			Keyboard: MainKeyboard(role),
		}
	}

	return Reply{
		Text:     fmt.Sprintf("✅ <code>%s</code> 已回收入库，会议已结束", code),
		Keyboard: MainKeyboard(role),
	}
}

func (d *Dispatcher) ingest(ctx context.Context, req Request, role model.Role) Reply {
	if !role.Authorized() {
		return Reply{Text: renderNotAuthorized(req.UserID), Keyboard: MainKeyboard(role)}
	}

	codes := ExtractCodes(req.Text)
	if len(codes) == 0 {
		return Reply{Text: "⚠️ 未识别到有效授权码"}
	}

	result, err := d.inventory.AddCodes(ctx, codes, fmt.Sprintf("forwarded by %d", req.UserID))
	if err != nil {
		log.Error().Err(err).Int64("userId", req.UserID).Msg("code ingestion failed")
		return Reply{Text: msgGenericError}
	}

	stats, err := d.inventory.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stock stats failed")
		return Reply{Text: msgGenericError}
	}

	return Reply{Text: renderIngestResult(result, stats.Available), Keyboard: MainKeyboard(role)}
}

func (d *Dispatcher) admin(ctx context.Context, req Request, role model.Role, args []string) Reply {
	if role != model.RoleRoot {
		return Reply{Text: msgRootOnly}
	}

	if len(args) == 0 {
		return d.adminPanel(ctx)
	}

	switch args[0] {
	case "codes":
		return d.adminCodes(ctx)
	case "delcode":
		return d.adminDelCode(ctx, req, args[1:])
	case "users":
		return d.adminUsers(ctx)
	case "addcode":
		return d.adminAddCode(ctx, args[1:])
	case "take":
		return d.adminTake(ctx, req, args[1:])
	case "assign":
		return d.adminAssign(ctx, args[1:])
	}

	return d.adminPanel(ctx)
}

func (d *Dispatcher) adminPanel(ctx context.Context) Reply {
	stats, err := d.inventory.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stock stats failed")
		return Reply{Text: msgGenericError}
	}
	admins, err := d.roles.ListAdmins(ctx)
	if err != nil {
		log.Error().Err(err).Msg("admin listing failed")
		return Reply{Text: msgGenericError}
	}
	users, err := d.roles.ListUsers(ctx, 1000)
	if err != nil {
		log.Error().Err(err).Msg("user listing failed")
		return Reply{Text: msgGenericError}
	}
	return Reply{Text: renderAdminPanel(stats, admins, len(users)), Keyboard: MainKeyboard(model.RoleRoot)}
}

func (d *Dispatcher) adminCodes(ctx context.Context) Reply {
	rows, err := d.inventory.ListCodes(ctx, d.listLimit)
	if err != nil {
		log.Error().Err(err).Msg("code listing failed")
		return Reply{Text: msgGenericError}
	}

	holders := make(map[int64]*model.User)
	for _, r := range rows {
		if r.AssignedTo == nil {
			continue
		}
		if _, seen := holders[*r.AssignedTo]; seen {
			continue
		}
		u, err := d.roles.Find(ctx, *r.AssignedTo)
		if err != nil {
			log.Warn().Err(err).Int64("holderId", *r.AssignedTo).Msg("holder lookup failed")
			continue
		}
		holders[*r.AssignedTo] = u
	}

	return Reply{Text: renderCodeRows(rows, holders)}
}

func (d *Dispatcher) adminDelCode(ctx context.Context, req Request, args []string) Reply {
	if len(args) == 0 {
		return Reply{Text: "📝 用法：/admin delcode &lt;授权码&gt;"}
	}

	code := model.NormalizeCode(args[0])
	if err := d.inventory.DeleteCode(ctx, code, req.UserID); err != nil {
		if apperrors.Is(err, apperrors.ErrCodeCodeNotDeletable) {
			return Reply{Text: fmt.Sprintf("⚠️ <code>%s</code> 不存在或已分发，无法删除", code)}
		}
		log.Error().Err(err).Str("code", code).Msg("code deletion failed")
		return Reply{Text: msgGenericError}
	}

	return Reply{Text: fmt.Sprintf("✅ 已删除 <code>%s</code>", code)}
}

func (d *Dispatcher) adminUsers(ctx context.Context) Reply {
	users, err := d.roles.ListUsers(ctx, 1000)
	if err != nil {
		log.Error().Err(err).Msg("user listing failed")
		return Reply{Text: msgGenericError}
	}
	return Reply{Text: renderUserRows(users, d.roles.RootID())}
}

func (d *Dispatcher) adminAddCode(ctx context.Context, args []string) Reply {
	if len(args) == 0 {
		return Reply{Text: "📝 用法：/admin addcode &lt;授权码&gt; [备注]"}
	}

	code := model.NormalizeCode(args[0])
	note := ""
	if len(args) > 1 {
		note = args[1]
	}

	if err := d.inventory.AddCode(ctx, code, note); err != nil {
		if apperrors.Is(err, apperrors.ErrCodeDuplicateCode) {
			return Reply{Text: fmt.Sprintf("⚠️ <code>%s</code> 已在库存中", code)}
		}
		log.Error().Err(err).Str("code", code).Msg("manual code insert failed")
		return Reply{Text: msgGenericError}
	}

	stats, err := d.inventory.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stock stats failed")
		return Reply{Text: msgGenericError}
	}

	return Reply{Text: fmt.Sprintf("✅ 已入库 <code>%s</code>\n📦 当前可分发：<b>%d</b> 个", code, stats.Available)}
}

// adminAssign hands a named code to a specific user, bypassing the
// one-code-per-holder self-service policy.
func (d *Dispatcher) adminAssign(ctx context.Context, args []string) Reply {
	usage := "📝 用法：/admin assign &lt;授权码&gt; &lt;Telegram ID&gt;"
	if len(args) < 2 {
		return Reply{Text: usage}
	}

	code := model.NormalizeCode(args[0])
	targetID, ok := ParseID(args[1])
	if !ok {
		return Reply{Text: "❌ ID 格式错误\n\n" + usage}
	}

	if err := d.inventory.ClaimSpecific(ctx, targetID, code); err != nil {
		if apperrors.Is(err, apperrors.ErrCodeCodeTaken) {
			return Reply{Text: fmt.Sprintf("⚠️ <code>%s</code> 不存在或已被分发", code)}
		}
		log.Error().Err(err).Str("code", code).Int64("targetId", targetID).Msg("direct assign failed")
		return Reply{Text: msgGenericError}
	}

	return Reply{Text: fmt.Sprintf("✅ 已将 <code>%s</code> 分配给 <code>%d</code>", code, targetID)}
}

func (d *Dispatcher) adminTake(ctx context.Context, req Request, args []string) Reply {
	if len(args) == 0 {
		return Reply{Text: "📝 用法：/admin take &lt;数量&gt;"}
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return Reply{Text: "❌ 数量格式错误\n\n📝 用法：/admin take &lt;数量&gt;"}
	}

	codes, err := d.inventory.BulkTake(ctx, n, req.UserID)
	if err != nil {
		log.Error().Err(err).Int("count", n).Msg("bulk take failed")
		return Reply{Text: msgGenericError}
	}

	stats, err := d.inventory.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stock stats failed")
		return Reply{Text: msgGenericError}
	}

	return Reply{Text: renderBulkTake(codes, stats.Available)}
}
