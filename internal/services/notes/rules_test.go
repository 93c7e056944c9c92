package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCreate(t *testing.T) {
	longTitle := strings.Repeat("a", MaxTitleLength+1)
	longContent := strings.Repeat("b", MaxContentLength+1)

	tests := []struct {
		name     string
		title    string
		content  string
		wantRule string
		wantErr  error
	}{
		{"valid", "title", "content", "", nil},
		{"missing title", "", "content", "presence", ErrTitleContentRequired},
		{"missing content", "title", "", "presence", ErrTitleContentRequired},
		{"long title", longTitle, "content", "title_length", ErrTitleTooLong},
		{"long content", "title", longContent, "content_length", ErrContentTooLong},
		// several problems at once report only the first rule
		{"empty title and long content", "", longContent, "presence", ErrTitleContentRequired},
		{"long title and long content", longTitle, longContent, "title_length", ErrTitleTooLong},
		{"whitespace counts as content", " ", "\n", "", nil},
		{"whitespace counts toward length", strings.Repeat(" ", MaxTitleLength+1), "c", "title_length", ErrTitleTooLong},
		{"multibyte title at limit", strings.Repeat("é", MaxTitleLength), "c", "", nil},
		{"emoji title at limit counts code points", strings.Repeat("🙂", MaxTitleLength), "c", "", nil},
		{"emoji content at limit counts code points", "t", strings.Repeat("🙂", MaxContentLength), "", nil},
		{"emoji title over limit", strings.Repeat("🙂", MaxTitleLength+1), "c", "title_length", ErrTitleTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := validateCreate(tt.title, tt.content)
			assert.Equal(t, tt.wantRule, rule)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateRulesOrder(t *testing.T) {
	names := make([]string, 0, len(createRules))
	for _, r := range createRules {
		names = append(names, r.name)
	}
	assert.Equal(t, []string{"presence", "title_length", "content_length"}, names)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "Title and content are required", ErrTitleContentRequired.Error())
	assert.Equal(t, "Title must be less than 100 characters", ErrTitleTooLong.Error())
	assert.Equal(t, "Content must be less than 1000 characters", ErrContentTooLong.Error())
	assert.ErrorIs(t, ErrListNotes, ErrStorage)
	assert.NotErrorIs(t, ErrNoteNotFound, ErrStorage)
	assert.NotErrorIs(t, ErrTitleTooLong, ErrStorage)
}
