// Package renderer turns ledger data into markdown reports.
//
// Each report has a view type (Accounts, AccountDetail, Logs, Rules,
// Summary) built from the domain values, and a text/template under
// templates/ that renders it. Amounts in views are fintrack.Money so templates can pick String or
// SignedString.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var embedded embed.FS

var templates, _ = fs.Sub(embedded, "templates")

// RenderAccounts renders the list of accounts with their balances.
func RenderAccounts(v *Accounts) string {
	partials := map[string]string{
		"accounts_table": "accounts_table.md",
	}
	return renderTemplate("accounts", "accounts.md", partials, v)
}

// RenderAccount renders one account and its transactions.
func RenderAccount(v *AccountDetail) string {
	partials := map[string]string{
		"account_transactions": "account_transactions.md",
	}
	return renderTemplate("account", "account.md", partials, v)
}

// RenderLogs renders the audit trail.
func RenderLogs(v *Logs) string {
	return renderTemplate("logs", "logs.md", nil, v)
}

// RenderRules renders the recurring rules. Entries applied by the last run,
// if any, are listed after the rules.
func RenderRules(v *Rules) string {
	partials := map[string]string{
		"rules_applied": "rules_applied.md",
	}
	if len(v.Applied) == 0 {
		partials["rules_applied"] = ""
	}
	return renderTemplate("rules", "rules.md", partials, v)
}

// RenderSummary renders the income and expenses report. The monthly table is
// only shown for reports covering several months.
func RenderSummary(v *Summary) string {
	partials := map[string]string{
		"summary_months": "summary_months.md",
	}
	if len(v.Months) == 0 {
		partials["summary_months"] = ""
	}
	return renderTemplate("summary", "summary.md", partials, v)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
