package command

import (
	"regexp"
	"strconv"
	"strings"
)

// Request is one inbound chat action, already stripped of transport detail.
type Request struct {
	UserID    int64
	Username  string
	FirstName string
	Text      string
}

// Reply is what the transport should render back: message text (HTML) and an
// optional reply keyboard.
type Reply struct {
	Text     string
	Keyboard [][]string
}

// Main keyboard buttons. The transport echoes button captions back as plain
// message text, so dispatch matches on these exact strings.
const (
	ButtonClaim = "🎫 领取授权码"
	ButtonQuery = "🔍 查询授权码"
	ButtonBind1 = "🔐1️⃣ 使用者绑定1"
	ButtonBind2 = "🔐2️⃣ 使用者绑定2"
)

// codeMarker tags codes in messages forwarded from the master bot:
// #YUNJICODE:<token>, alphanumeric plus hyphen and underscore.
var codeMarker = regexp.MustCompile(`#YUNJICODE:([A-Za-z0-9_\-]+)`)

// ExtractCodes scans a forwarded message for every marked code token.
func ExtractCodes(text string) []string {
	matches := codeMarker.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, strings.ToUpper(m[1]))
	}
	return codes
}

// HasCodeMarker is a cheap pre-check before running extraction.
func HasCodeMarker(text string) bool {
	return strings.Contains(text, "#YUNJICODE:")
}

// IsCommand reports whether the text is a slash command.
func IsCommand(text string) bool {
	return strings.HasPrefix(text, "/")
}

// SplitCommand separates a slash command from its arguments. The @botname
// suffix some clients append is dropped.
func SplitCommand(text string) (name string, args []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	name = strings.ToLower(fields[0])
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	return name, fields[1:]
}

// ParseID parses a numeric chat user id argument.
func ParseID(arg string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
