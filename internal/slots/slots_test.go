package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndToEnd(t *testing.T) {
	text := "Available appointment slots:\n" +
		"📅 Monday, June 2\n" +
		"- 10:00 AM (ID: slot_abc123)\n"

	got := Parse(text)
	require.Len(t, got, 1)
	assert.Equal(t, "slot_abc123", got[0].ID)
	assert.Equal(t, "Monday, June 2", got[0].Day)
	assert.Equal(t, "10:00 AM", got[0].Time)
	assert.True(t, got[0].Available)
}

func TestParseMultipleDaysAndBullets(t *testing.T) {
	text := `Here are our openings.

Available appointment slots:

📅 Monday, June 2, 2025
• 10:00 AM (ID: slot_aaa)
• 2:30 PM (ID: slot_bbb)

📅 Tuesday, June 3, 2025
* 9:15 am (ID: slot_ccc)
`
	got := Parse(text)
	require.Len(t, got, 3)

	assert.Equal(t, "Monday, June 2", got[0].Day)
	assert.Equal(t, "2:30 PM", got[1].Time)
	assert.Equal(t, "Tuesday, June 3", got[2].Day)
	assert.Equal(t, "slot_ccc", got[2].ID)
	assert.Equal(t, "9:15 am", got[2].Time, "time match is case-insensitive")
}

func TestParseNoMarker(t *testing.T) {
	assert.Nil(t, Parse("📅 Monday\n- 10:00 AM (ID: slot_x)"))
}

func TestParseMalformedLines(t *testing.T) {
	text := `Available appointment slots:
📅 Monday, June 2
- 10:00 AM but no id token
- no time here (ID: slot_only_id)
plain line 11:00 AM (ID: slot_not_bulleted)
`
	assert.Nil(t, Parse(text), "non-matching lines yield no slots, not an error")
}

func TestParseEmpty(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("Available appointment slots"))
}
