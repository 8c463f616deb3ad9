package export

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 0; background: #f5f5f5; color: #222; }
.container { max-width: 1100px; margin: 0 auto; padding: 24px; }
h1 { border-bottom: 3px solid #c0392b; padding-bottom: 8px; }
h2 { margin-top: 32px; }
.meta p { margin: 2px 0; color: #555; }
.summary { display: flex; gap: 16px; margin: 16px 0; }
.summary .card { background: #fff; border-radius: 6px; padding: 12px 20px; box-shadow: 0 1px 3px rgba(0,0,0,0.15); }
.summary .card .num { font-size: 28px; font-weight: bold; }
.differing .num { color: #c0392b; }
.identical .num { color: #27ae60; }
.unmatched .num { color: #e67e22; }
.pair { background: #fff; border-radius: 6px; padding: 16px; margin: 12px 0; box-shadow: 0 1px 3px rgba(0,0,0,0.15); }
.pair .label { font-weight: bold; margin-bottom: 6px; }
.pair .stats { color: #666; font-size: 13px; margin-bottom: 8px; }
.pair img { max-width: 100%; border: 1px solid #ddd; }
.manual { background: #8e44ad; color: #fff; font-size: 11px; border-radius: 3px; padding: 1px 6px; margin-left: 8px; }
table.zones { border-collapse: collapse; background: #fff; }
table.zones th, table.zones td { border: 1px solid #ddd; padding: 6px 12px; text-align: left; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<div class="meta">
<p>Generated: {{.Generated}}</p>
<p>Left: <strong>{{.LeftPath}}</strong> ({{.LeftPages}} pages)</p>
<p>Right: <strong>{{.RightPath}}</strong> ({{.RightPages}} pages)</p>
</div>

<div class="summary">
<div class="card differing"><div class="num">{{len .Differing}}</div>pages with differences</div>
<div class="card identical"><div class="num">{{len .Identical}}</div>identical pages</div>
<div class="card unmatched"><div class="num">{{len .UnmatchedLeft}}</div>only in left</div>
<div class="card unmatched"><div class="num">{{len .UnmatchedRight}}</div>only in right</div>
</div>

{{if .Differing}}
<h2>Pages with Differences</h2>
{{range .Differing}}
<div class="pair">
<div class="label">Left page {{.LeftIndex}} &harr; Right page {{.RightIndex}}{{if .Manual}}<span class="manual">manual</span>{{end}}</div>
<div class="stats">similarity {{printf "%.3f" .Similarity}} &middot; diff score {{printf "%.4f" .DiffScore}} &middot; {{.Regions}} region(s)</div>
{{if .Thumbnail}}<img src="{{.Thumbnail}}" alt="comparison">{{end}}
</div>
{{end}}
{{end}}

{{if .UnmatchedLeft}}
<h2>Pages Only in Left Document</h2>
{{range .UnmatchedLeft}}
<div class="pair">
<div class="label">Left page {{.Index}}</div>
{{if .Thumbnail}}<img src="{{.Thumbnail}}" alt="left page {{.Index}}">{{end}}
</div>
{{end}}
{{end}}

{{if .UnmatchedRight}}
<h2>Pages Only in Right Document</h2>
{{range .UnmatchedRight}}
<div class="pair">
<div class="label">Right page {{.Index}}</div>
{{if .Thumbnail}}<img src="{{.Thumbnail}}" alt="right page {{.Index}}">{{end}}
</div>
{{end}}
{{end}}

{{if and .ShowIdentical .Identical}}
<h2>Identical Pages</h2>
{{range .Identical}}
<div class="pair">
<div class="label">Left page {{.LeftIndex}} &harr; Right page {{.RightIndex}}</div>
<div class="stats">similarity {{printf "%.3f" .Similarity}}</div>
</div>
{{end}}
{{end}}

{{if .Zones}}
<h2>Exclusion Zones</h2>
<table class="zones">
<tr><th>Name</th><th>Applies To</th><th>Size</th></tr>
{{range .Zones}}<tr><td>{{.Name}}</td><td>{{.AppliesTo}}</td><td>{{.Area}}</td></tr>
{{end}}
</table>
{{end}}

</div>
</body>
</html>
`
