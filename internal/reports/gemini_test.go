package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestReportText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr error
	}{
		{
			name:    "nil response",
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: ErrInvalidResponse,
		},
		{
			name: "prompt blocked",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
					BlockReason: genai.BlockedReasonSafety,
				},
			},
			wantErr: ErrContentBlocked,
		},
		{
			name: "candidate blocked",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			},
			wantErr: ErrContentBlocked,
		},
		{
			name: "empty text",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{Text: "   "}}},
				}},
			},
			wantErr: ErrInvalidResponse,
		},
		{
			name: "joins parts",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{
						{Text: "## Global summary\n"},
						nil,
						{Text: "Revenue grew."},
					}},
				}},
			},
			want: "## Global summary\nRevenue grew.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reportText(tt.resp)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptRender(t *testing.T) {
	p, err := NewPrompt("", 0, "")
	require.NoError(t, err)

	out, err := p.Render("q3.pdf", "Revenue grew 12%.")
	require.NoError(t, err)

	assert.Contains(t, out, `The document is named "q3.pdf"`)
	assert.Contains(t, out, "(source: q3.pdf)")
	assert.Contains(t, out, "Global summary")
	assert.Contains(t, out, "Detailed synthesis")
	assert.Contains(t, out, "Key points")
	assert.Contains(t, out, "Revenue grew 12%.")
	assert.NotContains(t, out, "Write the report in")
}

func TestPromptLanguage(t *testing.T) {
	p, err := NewPrompt("", 0, "French")
	require.NoError(t, err)

	out, err := p.Render("a.pdf", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Write the report in French.")
}

func TestPromptTruncates(t *testing.T) {
	p, err := NewPrompt("", 5, "")
	require.NoError(t, err)

	out, err := p.Render("a.txt", "héllo world")
	require.NoError(t, err)
	assert.Contains(t, out, "héllo")
	assert.NotContains(t, out, "world")
}

func TestPromptFromFile(t *testing.T) {
	path := t.TempDir() + "/custom.tmpl"
	require.NoError(t, writeFile(path, "Summarize {{ .Name }}: {{ .Text }}"))

	p, err := NewPrompt(path, 0, "")
	require.NoError(t, err)

	out, err := p.Render("a.txt", "body")
	require.NoError(t, err)
	assert.Equal(t, "Summarize a.txt: body", out)

	_, err = NewPrompt(t.TempDir()+"/missing.tmpl", 0, "")
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{APIKey: "key"}
	require.NoError(t, cfg.Finalize(nil))
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)

	assert.Error(t, (&Config{}).Finalize(nil))
}
