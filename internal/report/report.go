// Package report renders validation run results as standalone HTML
// compliance reports.
//
// Reports are self-contained (inline CSS, no external assets) so they can be
// archived or mailed as a single file. All document data passes through
// html/template escaping; extracted field values are untrusted input.
package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/solatis/doccheck/internal/rules"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<title>Compliance Validation Report</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.container { max-width: 1200px; margin: 0 auto; }
.header { background: #f5f5f5; padding: 20px; border-radius: 5px; }
.summary { background: #fff; padding: 20px; border: 1px solid #ddd; border-radius: 5px; margin: 20px 0; }
.document { background: #fff; padding: 20px; border: 1px solid #ddd; border-radius: 5px; margin: 20px 0; }
.skipped { background: #fff; padding: 20px; border: 1px dashed #ddd; border-radius: 5px; margin: 20px 0; }
.rule { padding: 10px; margin: 10px 0; border-left: 4px solid #ccc; }
.rule.passed { border-left-color: #28a745; background: #d4edda; }
.rule.failed { border-left-color: #dc3545; background: #f8d7da; }
.rule.error { border-left-color: #ffc107; background: #fff3cd; }
.data { background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 10px 0; }
.status { display: inline-block; padding: 5px 10px; border-radius: 3px; color: white; }
.status.passed { background: #28a745; }
.status.failed { background: #dc3545; }
.status.error { background: #ffc107; color: black; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>Compliance Validation Report</h1>
<p>Generated on: {{.GeneratedAt}}</p>
</div>

<div class="summary">
<h2>Overall Summary</h2>
<p><strong>Total Documents:</strong> {{.Result.TotalDocuments}}</p>
<p><strong>Total Rules Applied:</strong> {{.Result.Summary.TotalRulesEvaluated}}</p>
<p><strong>Passed:</strong> {{.Result.Summary.Passed}}</p>
<p><strong>Failed:</strong> {{.Result.Summary.Failed}}</p>
<p><strong>Errors:</strong> {{.Result.Summary.Errors}}</p>
<p><strong>High Severity Failures:</strong> {{.Result.Summary.HighSeverityFailures}}</p>
<p><strong>Documents with Failures:</strong> {{.Result.Summary.DocumentsWithFailures}}</p>
<p><strong>Skipped Documents:</strong> {{len .Result.Skipped}}</p>
</div>

{{range .Result.Documents}}
<div class="document">
<h3>Document {{.Index}}: {{.DocumentType}}</h3>
{{if .Source}}<p><strong>Source:</strong> {{.Source}}</p>{{end}}
<div class="status {{docStatus .Summary}}">{{upper (docStatus .Summary)}}</div>

{{if .Fields}}
<div class="data">
<table>
{{range $key, $value := .Fields}}<tr><td><strong>{{$key}}</strong></td><td>{{$value}}</td></tr>
{{end}}</table>
</div>
{{end}}

<h4>Validation Results</h4>
{{range .Outcomes}}
<div class="rule {{.Status}}">
<div class="status {{.Status}}">{{upper (printf "%s" .Status)}}</div>
<h4>{{.Name}} ({{.RuleID}})</h4>
{{if .Field}}<p><strong>Field:</strong> {{.Field}}</p>{{end}}
<p><strong>Severity:</strong> {{.Severity}}</p>
{{if .Message}}<p><strong>Message:</strong> {{.Message}}</p>{{end}}
</div>
{{end}}

<div class="summary">
<p><strong>Total Rules:</strong> {{.Summary.TotalRules}}</p>
<p><strong>Passed:</strong> {{.Summary.Passed}}</p>
<p><strong>Failed:</strong> {{.Summary.Failed}}</p>
<p><strong>Errors:</strong> {{.Summary.Errors}}</p>
</div>
</div>
{{end}}

{{if .Result.Skipped}}
<div class="skipped">
<h3>Skipped Documents</h3>
{{range .Result.Skipped}}
<p><strong>Document {{.Index}}</strong>{{if .Source}} ({{.Source}}){{end}}: {{.Reason}}</p>
{{end}}
</div>
{{end}}
</div>
</body>
</html>
`

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
	"docStatus": func(s rules.DocumentSummary) string {
		switch {
		case s.Failed > 0:
			return string(rules.StatusFailed)
		case s.Errors > 0:
			return string(rules.StatusError)
		default:
			return string(rules.StatusPassed)
		}
	},
}).Parse(reportTemplate))

// Render produces the HTML report for a validation run.
func Render(result rules.BatchResult) (string, error) {
	data := struct {
		Result      rules.BatchResult
		GeneratedAt string
	}{
		Result:      result,
		GeneratedAt: result.GeneratedAt.Format("2006-01-02 15:04:05"),
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

// Write renders the report and writes it under dir as
// compliance_report_<timestamp>.html, returning the written path.
func Write(result rules.BatchResult, dir string) (string, error) {
	html, err := Render(result)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := fmt.Sprintf("compliance_report_%s.html", result.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
