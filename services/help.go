package services

const uiHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>mailsink</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 42em; padding: 0 1em; }
code, pre { background: #f4f4f4; padding: 2px 5px; }
input { width: 24em; }
</style>
</head>
<body>
<h1>mailsink</h1>
<p>Generate a throwaway address, send mail to it, read it back.</p>
<p><button onclick="createAddress()">New address</button> <input id="addr" readonly></p>
<pre id="out"></pre>
<script>
async function createAddress() {
  const res = await fetch('/email/create');
  const body = await res.json();
  document.getElementById('addr').value = body.data.address;
  document.getElementById('out').textContent = JSON.stringify(body.data, null, 2);
}
</script>
<p>See <a href="/help">/help</a> for the API.</p>
</body>
</html>
`

const helpHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>mailsink API</title></head>
<body>
<h1>API</h1>
<ul>
<li><code>GET /email/create</code> — generate a random address under the configured domain</li>
<li><code>GET /email/:address?limit=10&amp;parser=cursor</code> — newest messages for an address;
<code>limit</code> is clamped to [1,50]; <code>parser</code> optionally names an extractor
(<code>cursor</code>, <code>link</code>) applied to each text body as <code>parsed_code</code></li>
<li><code>POST /messages?from=&amp;to=</code> — submit a raw message for ingestion</li>
<li><code>GET /status</code> — health check</li>
<li><code>GET /metrics</code> — prometheus metrics</li>
</ul>
</body>
</html>
`
