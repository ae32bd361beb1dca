package command

import (
	"fmt"
	"strings"

	"github.com/cloudmeet/agent-bot-go/internal/model"
	"github.com/cloudmeet/agent-bot-go/internal/service"
)

const divider = "━━━━━━━━━━━━━━━"

// MainKeyboard is the persistent reply keyboard for a role. Unbound users
// only see the self-bind buttons.
func MainKeyboard(role model.Role) [][]string {
	if role.Authorized() {
		return [][]string{{ButtonClaim, ButtonQuery}}
	}
	return [][]string{{ButtonBind1, ButtonBind2}}
}

func renderWelcome(firstName string, role model.Role, adminCount int) string {
	var b strings.Builder
	b.WriteString("☁️ <b>云际会议</b>\n")
	b.WriteString(divider + "\n\n")

	if !role.Authorized() {
		if adminCount >= maxAdminSlots {
			fmt.Fprintf(&b, "👋 你好，%s！\n\n⛔ <b>绑定名额已满（%d/%d）</b>\n\n请联系管理员处理。", firstName, adminCount, maxAdminSlots)
			return b.String()
		}
		fmt.Fprintf(&b, "👋 你好，%s！\n\n您尚未绑定，点击下方按钮即可绑定使用。\n📍 绑定名额：<b>%d/%d</b>", firstName, adminCount, maxAdminSlots)
		return b.String()
	}

	fmt.Fprintf(&b, "👋 欢迎，%s！\n\n", firstName)
	b.WriteString("🎫 <b>领取授权码</b> — 获取一个会议授权码\n")
	b.WriteString("🔍 <b>查询授权码</b> — 查看已领取的授权码\n\n")
	b.WriteString("📌 <b>使用说明：</b>\n" + divider + "\n")
	b.WriteString("🟢 <b>创建会议</b>\n  👉 输入：<code>授权码 + 房间号</code>\n\n")
	b.WriteString("🔵 <b>加入会议</b>\n  👉 输入：<code>创建者的授权码 + 创建时的房间号</code>\n\n")
	b.WriteString("⏰ 领取后，第一次开设房间才开始计时\n")
	b.WriteString("🔑 授权码 <b>一码一房间</b>，会议结束后可再次开设房间")

	switch role {
	case model.RoleRoot:
		b.WriteString("\n\n👑 <b>ROOT 命令：</b>\n")
		b.WriteString("/bind &lt;ID&gt; — 绑定 Admin\n")
		b.WriteString("/kick &lt;ID&gt; — 踢出 Admin\n")
		b.WriteString("/admin — 管理面板")
	case model.RoleAdmin:
		b.WriteString("\n\n🔓 /unbind — 解除自己的绑定")
	}
	return b.String()
}

func renderClaimSuccess(code string) string {
	return "✅ <b>领取成功！</b>\n" + divider + "\n\n" +
		fmt.Sprintf("🔑 授权码：<code>%s</code>\n\n", code) +
		"📌 <b>使用方法：</b>\n" +
		"🟢 创建会议：<code>授权码 + 房间号</code>\n" +
		"🔵 加入会议：<code>创建者授权码 + 房间号</code>\n\n" +
		"⏰ 第一次开设房间后开始计时\n" +
		"⚠️ 请勿将授权码分享给他人"
}

func renderAlreadyClaimed(code string) string {
	return "⚠️ <b>您已领取过授权码</b>\n" + divider + "\n\n" +
		fmt.Sprintf("🔑 您的授权码：<code>%s</code>\n\n", code) +
		"📌 点击「🔍 查询授权码」查看详情"
}

func renderNotAuthorized(userID int64) string {
	return "⛔ 您尚未被授权，请联系管理员绑定您的 ID：\n" +
		fmt.Sprintf("<code>%d</code>", userID)
}

// renderOverview renders the reconciled in-use / idle partitions.
func renderOverview(overview *service.Overview, available int) string {
	var b strings.Builder
	b.WriteString("📋 <b>我的授权码</b>\n" + divider + "\n\n")

	if overview.Degraded {
		b.WriteString("⚠️ 会议服务暂时无法访问，以下仅为本地记录\n\n")
	}

	if len(overview.InUse) == 0 && len(overview.Idle) == 0 {
		b.WriteString("您还未领取授权码。\n")
		fmt.Fprintf(&b, "📦 当前库存：<b>%d</b> 个可用\n\n", available)
		b.WriteString("请点击「🎫 领取授权码」获取。")
		return b.String()
	}

	if len(overview.InUse) > 0 {
		fmt.Fprintf(&b, "🔴 <b>使用中（%d）</b>\n", len(overview.InUse))
		for _, r := range overview.InUse {
			fmt.Fprintf(&b, "<code>%s</code>", r.Code.Code)
			if r.Room != "" {
				fmt.Fprintf(&b, " 🚪%s", r.Room)
			}
			switch {
			case r.State == service.StateExpired:
				fmt.Fprintf(&b, "\n   ⏰ 已过期%s，仍占用中，发送 /release %s 释放\n", service.FormatClock(r.Overdue), r.Code.Code)
			case r.OpenEnded:
				b.WriteString("\n   ♾ 无到期时间\n")
			default:
				fmt.Fprintf(&b, "\n   ⏳ 剩余%s\n", service.FormatClock(r.Remaining))
			}
		}
		b.WriteString("\n")
	}

	if len(overview.Idle) > 0 {
		fmt.Fprintf(&b, "🟢 <b>可用（%d）</b>\n", len(overview.Idle))
		for _, r := range overview.Idle {
			fmt.Fprintf(&b, "<code>%s</code>  ⏱ %s（未开始计时）\n", r.Code.Code, service.FormatTotalMinutes(r.TotalMinutes))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "📦 库存剩余可用：<b>%d</b>", available)
	if !overview.Degraded && overview.RemoteIdleUnclaimed > 0 {
		fmt.Fprintf(&b, "（远端空闲 %d）", overview.RemoteIdleUnclaimed)
	}
	return b.String()
}

func renderIngestResult(result *service.IngestResult, available int) string {
	var lines []string
	if len(result.Added) > 0 {
		lines = append(lines, fmt.Sprintf("✅ 入库 %d 个：%s", len(result.Added), codeList(result.Added)))
	}
	if len(result.Duplicates) > 0 {
		lines = append(lines, fmt.Sprintf("⚠️ 重复跳过 %d 个：%s", len(result.Duplicates), codeList(result.Duplicates)))
	}
	lines = append(lines, fmt.Sprintf("📦 当前可分发：<b>%d</b> 个", available))
	return strings.Join(lines, "\n")
}

func codeList(codes []string) string {
	tagged := make([]string, len(codes))
	for i, c := range codes {
		tagged[i] = fmt.Sprintf("<code>%s</code>", c)
	}
	return strings.Join(tagged, ", ")
}

func renderAdminPanel(stats *model.StockStats, admins []model.User, userCount int) string {
	var b strings.Builder
	b.WriteString("👑 <b>管理面板</b>\n" + divider + "\n\n")

	fmt.Fprintf(&b, "👥 已绑定 Admin（%d/%d）：\n", len(admins), maxAdminSlots)
	if len(admins) == 0 {
		b.WriteString("  暂无\n")
	}
	for _, a := range admins {
		fmt.Fprintf(&b, "  • %s (<code>%d</code>)\n", displayName(&a), a.TelegramID)
	}

	fmt.Fprintf(&b, "\n👥 用户总数：%d\n", userCount)
	fmt.Fprintf(&b, "📦 库存总量：%d\n", stats.Total)
	fmt.Fprintf(&b, "🟢 可分发：%d\n", stats.Available)
	fmt.Fprintf(&b, "📤 已分发：%d\n\n", stats.Assigned)

	b.WriteString("📌 <b>命令：</b>\n")
	b.WriteString("/bind &lt;ID&gt; — 绑定 Admin\n")
	b.WriteString("/kick &lt;ID&gt; — 踢出 Admin\n")
	b.WriteString("/admin codes — 查看库存列表\n")
	b.WriteString("/admin delcode &lt;码&gt; — 删除未分发的码\n")
	b.WriteString("/admin users — 查看用户列表\n")
	b.WriteString("/admin addcode &lt;码&gt; [备注] — 手动录入\n")
	b.WriteString("/admin take &lt;数量&gt; — 批量取码线下发放\n")
	b.WriteString("/admin assign &lt;码&gt; &lt;ID&gt; — 定向分配\n\n")
	b.WriteString("💡 <b>自动入库：</b>将主机器人发来的购买成功消息直接转发给本机器人即可自动入库")
	return b.String()
}

func renderCodeRows(rows []model.AuthCode, users map[int64]*model.User) string {
	if len(rows) == 0 {
		return "📦 库存为空"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📦 <b>授权码库存（最近%d条）</b>\n%s\n\n", len(rows), divider)
	for _, r := range rows {
		status := "🟢 可用"
		if r.IsAssigned() {
			switch {
			case r.HolderKind != nil && *r.HolderKind == model.HolderKindBulk:
				status = "📤 批量发放"
			case r.AssignedTo != nil:
				if u, ok := users[*r.AssignedTo]; ok && u != nil {
					status = "📤 " + displayName(u)
				} else {
					status = fmt.Sprintf("📤 已分发→%d", *r.AssignedTo)
				}
			default:
				status = "📤 已分发"
			}
		}
		fmt.Fprintf(&b, "<code>%s</code> %s", r.Code, status)
		if r.Note != "" {
			fmt.Fprintf(&b, " <i>%s</i>", r.Note)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderUserRows(users []model.User, rootID int64) string {
	if len(users) == 0 {
		return "暂无用户"
	}

	var b strings.Builder
	b.WriteString("👥 <b>用户列表</b>\n" + divider + "\n\n")
	for _, u := range users {
		if u.TelegramID == rootID {
			continue
		}
		tag := ""
		if u.RoleOrNone() == model.RoleAdmin {
			tag = " 🔑Admin"
		}
		fmt.Fprintf(&b, "• <code>%d</code>  %s%s\n", u.TelegramID, displayName(&u), tag)
	}
	return b.String()
}

func renderBulkTake(codes []model.AuthCode, available int) string {
	if len(codes) == 0 {
		return "❌ <b>暂无可用授权码</b>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ <b>已取出 %d 个授权码</b>\n%s\n\n", len(codes), divider)
	for _, c := range codes {
		fmt.Fprintf(&b, "<code>%s</code>\n", c.Code)
	}
	fmt.Fprintf(&b, "\n📦 剩余可分发：<b>%d</b> 个", available)
	return b.String()
}

func renderAdminList(admins []model.User, usage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 <b>已绑定 Admin</b>（%d/%d）\n%s\n\n", len(admins), maxAdminSlots, divider)
	if len(admins) == 0 {
		b.WriteString("暂无绑定用户\n\n")
	}
	for i, a := range admins {
		fmt.Fprintf(&b, "%d. %s\n   ID: <code>%d</code>\n\n", i+1, displayName(&a), a.TelegramID)
	}
	b.WriteString(usage)
	return b.String()
}

func displayName(u *model.User) string {
	name := strings.TrimSpace(u.FirstName)
	if u.Username != "" {
		name = strings.TrimSpace(name + " @" + u.Username)
	}
	if name == "" {
		name = fmt.Sprintf("%d", u.TelegramID)
	}
	return name
}
