package postfix

import (
	"testing"

	"github.com/bastiangx/gopostfix/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Postfix.Disabled = []string{"switch"}
	cfg.Templates = []config.TemplateConfig{
		{Label: "log", Body: `log.Printf("{{quoted}}=%v", {{expr}})$0`},
		{Label: "bad label", Body: "x"},
		{Label: "broken", Body: "{{nope}}"},
		{Label: "log", Body: "dup"},
	}
	cfg.Snippets = []config.TemplateConfig{
		{Label: "bench", Detail: "benchmark", Body: "func Benchmark${1:Name}(b *testing.B) {\n\t$0\n}"},
		{Label: "usesexpr", Body: "{{expr}}"},
	}

	g, errs := FromConfig(cfg)
	assert.Len(t, errs, 4)
	assert.Contains(t, g.Labels(), "log")
	assert.Contains(t, g.Labels(), "bench")
	assert.NotContains(t, g.Labels(), "switch")
	assert.NotContains(t, g.Labels(), "usesexpr")

	c := byLabel(t, g.PostfixAt(`t["a"].lo`, 10), "log")
	assert.Equal(t, `log.Printf("t[\"a\"]=%v", t["a"])$0`, c.InsertText)

	bench := g.Skeleton("ben", 3)
	require.Len(t, bench, 1)
	assert.Equal(t, "benchmark", bench[0].Detail)

	assert.False(t, g.Accepts("rust"))
}

func TestFromConfigDefaultDetail(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Templates = []config.TemplateConfig{{Label: "ptr", Body: "&{{expr}}"}}

	opts, errs := OptionsFromConfig(cfg)
	require.Empty(t, errs)
	require.Len(t, opts.Postfix, 1)
	assert.Equal(t, "&expr", opts.Postfix[0].Detail)
	assert.Equal(t, []string{"go"}, opts.Languages)
}
