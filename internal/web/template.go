package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/shiftreg/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateClass": func(s string) string {
		switch s {
		case "ON":
			return "on"
		case "OFF":
			return "off"
		}
		return "unknown"
	},
	"binary": func(v uint64, width int) string {
		return fmt.Sprintf("%0*b", width, v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Shift Register {{.Config.Device}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Shift Register {{.Config.Device}}</h1>

<h2>Sample</h2>
<table>
{{if .HasSample}}<tr><th>Value</th><td>{{.Sample}}</td></tr>
<tr><th>Binary</th><td>{{binary .Sample .Config.Bits}}</td></tr>
<tr><th>Acquired</th><td>{{.LastAcquired.UTC.Format "2006-01-02T15:04:05.000Z"}}</td></tr>{{else}}<tr><th>Value</th><td class="unknown">no acquisition yet</td></tr>{{end}}
<tr><th>Acquisitions</th><td>{{.Acquisitions}}</td></tr>
<tr><th>Failures</th><td>{{.Failures}}{{if .LastError}} ({{.LastError}}){{end}}</td></tr>
<tr><th>Ready</th><td>{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Inputs</h2>
<table>
{{range .Inputs}}<tr><th>Input {{.Input}}</th><td class="{{stateClass .State}}">{{.State}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Config.InfluxURL}}<tr><th>InfluxDB</th><td>{{.Config.InfluxURL}}</td></tr>{{end}}
</table>

<h2>Wiring</h2>
<table>
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
<tr><th>Serial out</th><td>{{.Config.SerialOut}}</td></tr>
<tr><th>Load</th><td>{{.Config.Load}}</td></tr>
<tr><th>Clock</th><td>{{.Config.Clock}}</td></tr>
<tr><th>Bits</th><td>{{.Config.Bits}}</td></tr>
<tr><th>Settle</th><td>{{.Config.SettleUs}}µs</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Interval</th><td>{{.Config.IntervalMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Inputs []status.InputJSON
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Inputs:   status.InputStates(snap),
	}
	indexTmpl.Execute(w, data)
}
