package postfix

import (
	"github.com/bastiangx/gopostfix/internal/utils"
	"github.com/bastiangx/gopostfix/pkg/config"
	"github.com/bastiangx/gopostfix/pkg/snippet"
	"github.com/cockroachdb/errors"
)

// OptionsFromConfig converts the config catalog sections into Options.
// Entries that fail to parse are skipped and reported; the rest still load.
func OptionsFromConfig(cfg *config.Config) (Options, []error) {
	opts := Options{
		Languages: cfg.Server.Languages,
		Disabled:  cfg.Postfix.Disabled,
	}

	var errs []error
	opts.Postfix, errs = entriesFromConfig(cfg.Templates, true, errs)
	opts.Skeletons, errs = entriesFromConfig(cfg.Snippets, false, errs)
	return opts, errs
}

// FromConfig builds a Generator from cfg.
func FromConfig(cfg *config.Config) (*Generator, []error) {
	opts, errs := OptionsFromConfig(cfg)
	return New(opts), errs
}

func entriesFromConfig(items []config.TemplateConfig, postfix bool, errs []error) ([]Entry, []error) {
	filter := utils.NewLabelFilter()
	var out []Entry
	for _, item := range items {
		if !utils.IsLabel(item.Label) {
			errs = append(errs, errors.Newf("template label %q is not an identifier", item.Label))
			continue
		}
		if !filter.ShouldInclude(item.Label) {
			errs = append(errs, errors.Newf("template label %q defined twice", item.Label))
			continue
		}
		tmpl, err := snippet.Parse(item.Body)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "template %q", item.Label))
			continue
		}
		if !postfix && tmpl.HasReceiver() {
			errs = append(errs, errors.Newf("snippet %q uses the receiver but has no trigger dot", item.Label))
			continue
		}
		detail := item.Detail
		if detail == "" {
			detail = tmpl.Plain(snippet.Values{Expr: "expr", Quoted: "expr"})
		}
		out = append(out, Entry{Label: item.Label, Detail: detail, Template: tmpl})
	}
	return out, errs
}
