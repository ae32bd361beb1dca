package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudmeet/agent-bot-go/internal/model"
)

func TestExtractCodes(t *testing.T) {
	t.Run("single marked code", func(t *testing.T) {
		codes := ExtractCodes("购买成功！您的授权码 #YUNJICODE:abc-123")
		assert.Equal(t, []string{"ABC-123"}, codes)
	})

	t.Run("multiple codes in one forward", func(t *testing.T) {
		text := "#YUNJICODE:AAA111\n一些说明文字\n#YUNJICODE:bbb_222 #YUNJICODE:CCC333"
		codes := ExtractCodes(text)
		assert.Equal(t, []string{"AAA111", "BBB_222", "CCC333"}, codes)
	})

	t.Run("no marker", func(t *testing.T) {
		assert.Nil(t, ExtractCodes("普通消息，没有授权码"))
	})

	t.Run("marker with empty token", func(t *testing.T) {
		assert.Nil(t, ExtractCodes("#YUNJICODE: 后面没有紧跟的码"))
	})

	t.Run("stops at invalid characters", func(t *testing.T) {
		codes := ExtractCodes("#YUNJICODE:ABC123，后面是中文标点")
		assert.Equal(t, []string{"ABC123"}, codes)
	})
}

func TestHasCodeMarker(t *testing.T) {
	assert.True(t, HasCodeMarker("转发 #YUNJICODE:X1"))
	assert.False(t, HasCodeMarker("YUNJICODE:X1"))
}

func TestSplitCommand(t *testing.T) {
	t.Run("command with args", func(t *testing.T) {
		name, args := SplitCommand("/bind 123456789")
		assert.Equal(t, "/bind", name)
		assert.Equal(t, []string{"123456789"}, args)
	})

	t.Run("strips bot name suffix", func(t *testing.T) {
		name, args := SplitCommand("/admin@yunji_agent_bot take 5")
		assert.Equal(t, "/admin", name)
		assert.Equal(t, []string{"take", "5"}, args)
	})

	t.Run("uppercase command is normalized", func(t *testing.T) {
		name, _ := SplitCommand("/START")
		assert.Equal(t, "/start", name)
	})

	t.Run("empty text", func(t *testing.T) {
		name, args := SplitCommand("   ")
		assert.Equal(t, "", name)
		assert.Nil(t, args)
	})
}

func TestParseID(t *testing.T) {
	id, ok := ParseID(" 123456789 ")
	assert.True(t, ok)
	assert.Equal(t, int64(123456789), id)

	for _, bad := range []string{"abc", "-5", "0", "12.3", ""} {
		_, ok := ParseID(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("/start"))
	assert.False(t, IsCommand("start"))
	assert.False(t, IsCommand(ButtonClaim))
}

func TestMainKeyboard(t *testing.T) {
	t.Run("authorized roles get the code buttons", func(t *testing.T) {
		for _, role := range []model.Role{model.RoleRoot, model.RoleAdmin} {
			kb := MainKeyboard(role)
			assert.Equal(t, [][]string{{ButtonClaim, ButtonQuery}}, kb)
		}
	})

	t.Run("unbound users get the bind buttons", func(t *testing.T) {
		kb := MainKeyboard(model.RoleNone)
		assert.Equal(t, [][]string{{ButtonBind1, ButtonBind2}}, kb)
	})
}
