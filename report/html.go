package report

import (
	"bytes"
	"fmt"
	"html/template"
)

var reportTmpl = template.Must(template.New("daily").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Daily Trading Report {{.Date.Format "2006-01-02"}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
.failed { color: #a00; }
</style>
</head>
<body>
<h1>Daily Trading Report &mdash; {{.Date.Format "January 2, 2006"}}</h1>

<h2>Summary</h2>
<table>
<tr><th>Total transactions</th><td>{{.Stats.Total}}</td></tr>
<tr><th>Successful</th><td>{{.Stats.Successful}}</td></tr>
<tr><th>Failed</th><td>{{.Stats.Failed}}</td></tr>
<tr><th>Success rate</th><td>{{.Stats.SuccessRate}}%</td></tr>
<tr><th>Total volume</th><td>{{money .Stats.TotalVolume}}</td></tr>
</table>

{{if .Successful}}
<h2>Successful transactions</h2>
<table>
<tr><th>ID</th><th>User</th><th>Symbol</th><th>Qty</th><th>Price</th><th>Time</th></tr>
{{range .Successful}}
<tr><td>{{.ID}}</td><td>{{.UserID}}</td><td>{{.Symbol}}</td><td>{{.Quantity}}</td><td>{{money .RequestedPrice}}</td><td>{{.Timestamp.Format "15:04:05"}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Failed}}
<h2>Failed transactions</h2>
<table>
<tr><th>User</th><th>Symbol</th><th>Qty</th><th>Price</th><th>Error</th><th>Time</th></tr>
{{range .Failed}}
<tr class="failed"><td>{{.UserID}}</td><td>{{.Symbol}}</td><td>{{.Quantity}}</td><td>{{money .RequestedPrice}}</td><td>{{.ErrorCode}}</td><td>{{.Timestamp.Format "15:04:05"}}</td></tr>
{{end}}
</table>
{{end}}

<h2>Activity by user</h2>
<table>
<tr><th>User</th><th>Successful</th><th>Failed</th><th>Volume</th></tr>
{{range .Users}}
<tr><td>{{.UserID}}</td><td>{{len .Successful}}</td><td>{{len .Failed}}</td><td>{{money .TotalVolume}}</td></tr>
{{end}}
</table>
</body>
</html>
`))

// HTML renders the report for humans.
func (d Daily) HTML() (string, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}
