package api

const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
  <title>VOLVOT Site API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0; position: relative;">
  <a href="/docs/streams" style="
    position: fixed;
    top: 12px;
    right: 16px;
    z-index: 9999;
    background: #161b22;
    border: 1px solid #30363d;
    border-radius: 6px;
    color: #58a6ff;
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
    font-size: 12px;
    padding: 5px 12px;
    text-decoration: none;
  ">Region Streams →</a>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`

const streamDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Region Streams · VOLVOT</title>
  <style>
    body { margin: 0; background: #0d1117; color: #c9d1d9; font: 14px/1.65 -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; }
    nav { background: #161b22; border-bottom: 1px solid #30363d; padding: 12px 24px; }
    nav a { color: #58a6ff; text-decoration: none; }
    main { max-width: 860px; margin: 0 auto; padding: 32px 16px 64px; }
    h1, h2 { color: #e6edf3; }
    h2 { border-bottom: 1px solid #21262d; padding-bottom: 8px; margin-top: 36px; font-size: 18px; }
    table { width: 100%; border-collapse: collapse; font-size: 13px; margin-bottom: 20px; }
    th { text-align: left; background: #161b22; color: #8b949e; padding: 8px 12px; border-bottom: 1px solid #30363d; }
    td { padding: 8px 12px; border-bottom: 1px solid #21262d; vertical-align: top; }
    code { font-family: "SFMono-Regular", Consolas, Menlo, monospace; font-size: 12px; background: #161b22; border: 1px solid #30363d; border-radius: 3px; padding: 1px 5px; color: #e6edf3; }
    pre { background: #161b22; border: 1px solid #30363d; border-radius: 6px; padding: 16px; overflow-x: auto; }
    pre code { background: none; border: none; padding: 0; font-size: 13px; }
  </style>
</head>
<body>
<nav><a href="/docs">← REST API</a></nav>
<main>
  <h1>Region Streams</h1>
  <p>
    Every state change re-derives the affected display regions and pushes their
    full text to connected clients. A new client first receives a snapshot of
    every region, the live feeds and the active notice.
  </p>

  <h2>Endpoints</h2>
  <table>
    <thead><tr><th>Path</th><th>Transport</th></tr></thead>
    <tbody>
      <tr><td><code>/events</code></td><td>Server-sent events. The <code>event:</code> field is the feed name.</td></tr>
      <tr><td><code>/ws</code></td><td>WebSocket. Each text frame is <code>{"feed": "...", "payload": "..."}</code>.</td></tr>
    </tbody>
  </table>
  <p>Both accept <code>?feeds=region,notice</code> to receive a subset.</p>

  <h2>Feeds</h2>
  <table>
    <thead><tr><th>Feed</th><th>Payload</th></tr></thead>
    <tbody>
      <tr><td><code>region</code></td><td><code>{"id", "text", "html", "class", "disabled"}</code> for one display region; when <code>html</code> is true the text is markup, e.g. <code>token-price</code>, <code>eth-balance</code>, <code>recent-transactions</code>.</td></tr>
      <tr><td><code>notice</code></td><td>The notice just shown: <code>{"id", "kind", "icon", "message", "expires_at"}</code>.</td></tr>
      <tr><td><code>feed</code></td><td>Live trade signals and social posts.</td></tr>
    </tbody>
  </table>

  <h2>Example</h2>
  <pre><code>const sse = new EventSource('/events?feeds=region');
sse.addEventListener('region', (e) => {
  const r = JSON.parse(e.data);
  const el = document.getElementById(r.id);
  if (!el) return;
  if (r.html) el.innerHTML = r.text; else el.textContent = r.text;
  if (r.class) el.className = r.class;
  el.disabled = !!r.disabled;
});</code></pre>

  <h2>Notes</h2>
  <ul>
    <li>Each subscriber has a 256-event buffer; slow clients have events dropped.</li>
    <li>The streams are unauthenticated. Bind to <code>127.0.0.1</code> unless fronted by a proxy.</li>
  </ul>
</main>
</body>
</html>`
