package api

import "net/http"

// Dashboard serves the single-page monitoring UI. The page polls
// /api/stats once a second and renders recent alerts from /api/alerts.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>NetGuard IDS</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; color: #222; }
.status { font-weight: bold; padding: 10px; border-radius: 6px; text-align: center; }
.on { background: #e6ffe6; color: #060; }
.off { background: #ffe6e6; color: #c00; }
.stats { display: flex; gap: 20px; margin: 1em 0; }
.stat { flex: 1; background: #f4f4f4; padding: 12px; border-radius: 6px; text-align: center; }
.stat b { display: block; font-size: 1.6em; }
#log { border: 1px solid #ddd; border-radius: 6px; padding: 10px; height: 220px; overflow-y: auto; font-family: monospace; font-size: 0.9em; }
.alert { color: #c00; font-weight: bold; }
button { padding: 8px 18px; margin-right: 8px; }
</style>
</head>
<body>
<h1>NetGuard Intrusion Detection</h1>
<div id="status" class="status off">Protection Disabled</div>
<p>
<button onclick="call('/api/start')">Start Protection</button>
<button onclick="call('/api/stop')">Stop Protection</button>
Sensitivity: <input type="range" id="sens" min="1" max="100" value="50"
 onchange="fetch('/api/config?sensitivity='+this.value, {method:'PUT'})">
<span id="sensval">50</span>
</p>
<div class="stats">
<div class="stat"><b id="packets">0</b>Packets Analyzed</div>
<div class="stat"><b id="threats">0</b>Threats Detected</div>
<div class="stat"><b id="uptime">0s</b>Uptime</div>
</div>
<h3>Recent Activity</h3>
<div id="log"></div>
<script>
function call(path) { fetch(path, {method:'POST'}).then(refresh); }
function refresh() {
  fetch('/api/stats').then(r => r.json()).then(s => {
    document.getElementById('status').textContent = s.is_monitoring ? 'Protection Enabled' : 'Protection Disabled';
    document.getElementById('status').className = 'status ' + (s.is_monitoring ? 'on' : 'off');
    document.getElementById('packets').textContent = s.packets_analyzed.toLocaleString();
    document.getElementById('threats').textContent = s.threats_detected;
    document.getElementById('uptime').textContent = s.uptime + 's';
    document.getElementById('sens').value = s.sensitivity;
    document.getElementById('sensval').textContent = s.sensitivity;
  });
  fetch('/api/alerts?limit=50').then(r => r.json()).then(d => {
    document.getElementById('log').innerHTML = d.items.map(a =>
      '<div class="alert">[' + a.timestamp.slice(11,19) + '] ' + a.message + '</div>').join('');
  });
}
setInterval(refresh, 1000);
refresh();
</script>
</body>
</html>
`
