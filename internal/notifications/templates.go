package notifications

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/printdesk/pd-backend/internal/store"
)

func NewEmailLookupFunc(st *store.Store) EmailLookupFunc {
	return func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
		profiles, err := st.GetProfilesByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		result := make(map[uuid.UUID]string, len(profiles))
		for _, p := range profiles {
			result[p.ID] = p.Email
		}
		return result, nil
	}
}

// each .html file must define {{define "name:subject"}} and {{define "name:body"}} blocks,
// where name matches the filename without extension.
func LoadTemplates(dir string) (*template.Template, error) {
	pattern := filepath.Join(dir, "*.html")
	tmpl, err := template.ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates from %s: %w", dir, err)
	}
	return tmpl, nil
}
