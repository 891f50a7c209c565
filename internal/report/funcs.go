package report

import (
	"strings"
	"text/template"

	"github.com/isometry/gh-cleanowners-app/internal/cleanup"
	"github.com/isometry/gh-cleanowners-app/internal/codeowners"
	"github.com/isometry/gh-cleanowners-app/internal/models"
	"go.yaml.in/yaml/v3"
)

// StandardFuncs is a map of functions available to the report template.
var StandardFuncs = template.FuncMap{
	"toYaml": func(v any) string {
		b, _ := yaml.Marshal(v)
		return string(b)
	},
	"replace": func(old, new, s string) string { //nolint:revive // false positive
		return strings.ReplaceAll(s, old, new)
	},
	"pullRequestRatio": func(s cleanup.RunStatistics) string {
		return formatRatio(s.PullRequestRatio())
	},
	"codeownersRatio": func(s cleanup.RunStatistics) string {
		return formatRatio(s.CodeownersRatio())
	},
	"mentions": func(handles []codeowners.Handle) string {
		out := make([]string, 0, len(handles))
		for _, h := range handles {
			out = append(out, "`@"+h.String()+"`")
		}
		return strings.Join(out, ", ")
	},
	"repoLink": func(repo *models.Repository) string {
		if repo.HTMLURL == "" {
			return repo.FullName()
		}
		return "[" + repo.FullName() + "](" + repo.HTMLURL + ")"
	},
}

// formatRatio returns an empty string when the ratio is undefined.
func formatRatio(pct float64, ok bool) string {
	if !ok {
		return ""
	}
	return cleanup.FormatPercent(pct) + "%"
}
