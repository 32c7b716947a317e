package ingest

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONL_Messages(t *testing.T) {
	input := `{"id": "m1", "subject": "first", "from": "a@example.com", "to": ["b@example.com"], "body": "Ym9keQ==", "date": "2024-03-15T10:30:00Z"}

{"id": "m2", "subject": "second", "from": "c@example.com"}
`
	records, err := ParseJSONL[MessageRecord](strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "m1", records[0].ID)
	assert.Equal(t, []string{"b@example.com"}, records[0].To)
	assert.Equal(t, "Ym9keQ==", records[0].Body)
	assert.Equal(t, "m2", records[1].ID)
}

func TestParseJSONL_Categories(t *testing.T) {
	input := `{"name": "Work", "description": "Job things"}
{"name": "Travel", "description": "Trips"}`
	records, err := ParseJSONL[CategoryRecord](strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Work", records[0].Name)
	assert.Equal(t, "Trips", records[1].Description)
}

func TestParseJSONL_ReportsLineNumber(t *testing.T) {
	input := `{"name": "ok"}
{broken json`
	_, err := ParseJSONL[CategoryRecord](strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseJSONL_Empty(t *testing.T) {
	records, err := ParseJSONL[CategoryRecord](strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeBase64Body(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("hello world"))
	decoded, err := DecodeBase64Body(encoded)
	require.NoError(t, err)
	assert.Equal(t, "hello world", decoded)
}

func TestDecodeBase64Body_Invalid(t *testing.T) {
	_, err := DecodeBase64Body("not valid base64!!!")
	require.Error(t, err)
}

func TestDecodeBase64Body_ReplacesInvalidUTF8(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte{'h', 'i', 0xff, 0xfe})
	decoded, err := DecodeBase64Body(encoded)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(decoded, "hi"))
	assert.True(t, strings.Contains(decoded, "�"))
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("<html><body>x</body></html>"))
	assert.True(t, IsHTML("before <DIV class=\"x\">after"))
	assert.True(t, IsHTML("line one<br/>line two"))
	assert.False(t, IsHTML("plain text with a < sign and 2 > 1"))
	assert.False(t, IsHTML(""))
}

func TestExtractText(t *testing.T) {
	content := `<html>
	<head><title>ignored</title><style>p { color: red; }</style></head>
	<body>
		<p>First   paragraph.</p>
		<script>var x = "never shown";</script>
		<p>Second paragraph.</p>
	</body>
	</html>`

	got := ExtractText(content)
	assert.Equal(t, "First paragraph. Second paragraph.", got)
}

func TestExtractText_PlainTextPassesThrough(t *testing.T) {
	got := ExtractText("just   some\n\ntext")
	assert.Equal(t, "just some text", got)
}

func TestParseISODate(t *testing.T) {
	got, err := ParseISODate("2024-03-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())

	got, err = ParseISODate("2024-03-15T10:30:00+02:00")
	require.NoError(t, err)
	_, offset := got.Zone()
	assert.Equal(t, 2*3600, offset)

	got, err = ParseISODate("2024-03-15T10:30:00")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	_, err = ParseISODate("15/03/2024")
	require.Error(t, err)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short body", Snippet("short body", 160))
	assert.Equal(t, "", Snippet("", 160))
	assert.Equal(t, "", Snippet("anything", 0))
}

func TestSnippet_WholeSentencesWithinLimit(t *testing.T) {
	body := "First sentence here. Second sentence follows. " + strings.Repeat("filler ", 40)
	got := Snippet(body, 50)
	assert.Equal(t, "First sentence here. Second sentence follows.", got)
}

func TestSnippet_HardTruncateWhenFirstSentenceTooLong(t *testing.T) {
	body := strings.Repeat("word ", 100)
	got := Snippet(body, 40)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), 43)
}
