package server

import "html/template"

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"mulf": func(a, b float64) float64 { return a * b },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta http-equiv="refresh" content="30">
<title>Paper Trader</title>
<style>
body { background:#0f111a; color:#d8dee9; font-family:monospace; padding:20px; }
h1 { color:#00ffcc; }
table { width:100%; border-collapse:collapse; margin-top:10px; }
th, td { padding:6px 8px; border-bottom:1px solid #222; text-align:left; }
.box { background:#1a1d2b; padding:15px; margin-bottom:20px; border-radius:8px; }
.stale { color:#ffb454; }
.pos { color:#7fd962; }
.neg { color:#f07178; }
</style>
</head>
<body>
<h1>Paper Trader</h1>

{{if .ViewStale}}<p class="stale">STALE — last update {{printf "%.0f" .AgeSeconds}}s ago (fetched {{.LastGoodFetch.Format "15:04:05"}})</p>{{end}}

<div class="box">
<p>Cash ${{printf "%.2f" .Account.Cash}} | Equity ${{printf "%.2f" .Account.Equity}} | Peak ${{printf "%.2f" .Account.PeakEquity}} | Max DD {{printf "%.1f%%" (mulf .Account.MaxDrawdown 100)}}</p>
<p>Trades {{.Account.Trades}} | Wins {{.Account.Wins}} | Losses {{.Account.Losses}} | Aggression {{printf "%.2f" .Policy.Aggression}} | Entry threshold {{printf "%.2f" .Policy.EntryThreshold}}</p>
</div>

<div class="box">
<h2>Open Positions</h2>
<table>
<tr><th>Symbol</th><th>Entry</th><th>Mark</th><th>Qty</th><th>Value</th><th>PnL</th><th>Stop</th><th>Target</th></tr>
{{range .Positions}}
<tr>
<td>{{.Symbol}}</td>
<td>{{printf "%.4f" .EntryPrice}}</td>
<td>{{printf "%.4f" .Mark}}</td>
<td>{{printf "%.4f" .Quantity}}</td>
<td>{{printf "%.2f" .Value}}</td>
<td class="{{if ge .UnrealizedPnL 0.0}}pos{{else}}neg{{end}}">{{printf "%+.2f" .UnrealizedPnL}}</td>
<td>{{printf "%.4f" .StopPrice}}</td>
<td>{{printf "%.4f" .TargetPrice}}</td>
</tr>
{{end}}
</table>
</div>

<div class="box">
<h2>Market</h2>
<table>
<tr><th>Symbol</th><th>Price</th><th>24h %</th><th>Score</th></tr>
{{range .Market}}
<tr>
<td>{{.Symbol}}</td>
<td>{{printf "%.4f" .Price}}</td>
<td class="{{if ge .Change24h 0.0}}pos{{else}}neg{{end}}">{{printf "%.2f" .Change24h}}</td>
<td>{{printf "%.2f" .Score}}</td>
</tr>
{{end}}
</table>
</div>

<div class="box">
<h2>Signals</h2>
{{range .Signals}}<p>{{.At.Format "15:04:05"}} {{.Text}}</p>{{end}}
</div>

</body>
</html>`))
