package generate

// pageTemplate is the html/template for one lecture page.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.DocTitle}}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.css">
  <script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.js"></script>
  <script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/contrib/auto-render.min.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.4/dist/chart.umd.min.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/mermaid@10.9.1/dist/mermaid.min.js"></script>
  <link rel="stylesheet" href="./app-shell.css?v={{.AssetVersion}}">
</head>
<body data-shell-page="lecture" data-breakpoint="{{.Breakpoint}}" data-source-file="{{.SourceFile}}">
  <div class="progress-tracker"><div class="progress-bar" id="progressBar"></div></div>

  <div class="page-container">
    <aside class="sidebar-left" id="sidebarLeft">
      <div class="sidebar-tabs">
        <button class="sidebar-tab active" data-tab="toc">Contents</button>
        <button class="sidebar-tab" data-tab="pdf">PDF</button>
        <button class="sidebar-tab" data-tab="notes">Notes</button>
      </div>

      <div class="sidebar-panel" id="panel-toc">
        <ul class="toc">
          <li><a href="#overview" class="toc-link">Overview</a></li>
          {{range .Concepts}}<li><a href="#{{.ID}}" class="toc-link">{{.Name}}</a></li>
          {{end}}
        </ul>
        <div class="course-stats">
          <div class="muted">Course Stats</div>
          <div>{{len .Concepts}} Concepts</div>
          <div>{{.Images}} Images</div>
          <div>{{.Tables}} Tables</div>
        </div>
      </div>

      <div class="sidebar-panel" id="panel-pdf" hidden>
        <p class="muted">Source: {{.SourceFile}}</p>
        <iframe id="pdfFrame" src="{{.PDFSrc}}" title="{{.SourceFile}}"></iframe>
      </div>

      <div class="sidebar-panel" id="panel-notes" hidden>
        <div class="notes-header">
          <span class="muted" id="notesCount">0 notes</span>
          <a class="action-btn small" id="notesExport" href="#">Export .md</a>
        </div>
        <div id="notesList" class="notes-list"></div>
        <div id="noteReader" class="note-reader">
          <div class="reader-title">Reading</div>
          <div class="reader-content">Click a note in history to read it here.</div>
        </div>
        <div class="note-composer">
          <textarea id="noteInput" placeholder="Write a note (Markdown supported)..."></textarea>
          <div class="note-reader note-draft-preview">
            <div class="reader-title">Live Preview</div>
            <div class="reader-content" id="noteDraftPreviewContent"></div>
          </div>
          <button class="action-btn" id="noteAdd">Add Note</button>
        </div>
      </div>
    </aside>

    <main class="main-content">
      <header id="overview">
        <h1>{{.Title}}</h1>
        <p class="subtitle">Interactive Learning Experience &bull; Source: {{.SourceFile}}</p>
        <div class="feynman-block overview">
          <h4>Course Overview</h4>
          <p><strong>Difficulty:</strong> {{.Difficulty}}</p>
          <h5>Prerequisites:</h5>
          <ul>{{range .Prerequisites}}<li>{{.}}</li>{{end}}</ul>
          <h5>Learning Objectives:</h5>
          <ul>{{range .Objectives}}<li>{{.}}</li>{{end}}</ul>
        </div>
      </header>

      {{range .Concepts}}
      <section id="{{.ID}}" class="concept-section">
        <h2>{{.Name}}</h2>
        <div class="feynman-block analogy"><h4>Simple Analogy</h4>{{.Analogy}}</div>
        <div class="feynman-block matters"><h4>Why This Matters</h4>{{.WhyItMatters}}</div>
        {{.Viz}}
        <div class="expandable">
          <div class="expandable-header"><span>Deep Dive: Detailed Explanation</span><span class="expandable-icon">&#9660;</span></div>
          <div class="expandable-content"><div class="expandable-content-inner">
            {{.Deep}}
            {{if .Original}}<div class="from-lecture"><strong>From lecture:</strong><br>{{.Original}}</div>{{end}}
          </div></div>
        </div>
        <div class="expandable open">
          <div class="expandable-header"><span>Practical Example</span><span class="expandable-icon">&#9660;</span></div>
          <div class="expandable-content"><div class="expandable-content-inner">{{.Example}}</div></div>
        </div>
        <div class="feynman-block mistakes"><h4>Common Mistakes</h4>{{.Mistake}}</div>
        {{range .Quiz}}
        <div class="quiz-container">
          <div class="quiz-question"><strong>Question {{.Number}}:</strong> {{.Question}}</div>
          <div class="quiz-options">
            {{range .Options}}<div class="quiz-option" data-correct="{{if .Correct}}true{{else}}false{{end}}">{{.Text}}</div>
            {{end}}
          </div>
          <div class="quiz-feedback correct">&#10003; Correct! {{.Explanation}}</div>
          <div class="quiz-feedback incorrect">&#10007; Not quite. {{.Explanation}}</div>
        </div>
        {{end}}
      </section>
      {{end}}

      <div class="completion">
        <h3>Course Complete!</h3>
        <p>You've reviewed all {{len .Concepts}} main concepts. Keep practicing with the quizzes above.</p>
      </div>
    </main>

    <aside class="sidebar-right" id="sidebarRight">
      <div class="ai-chat">
        <div class="ai-chat-header">
          <div>
            <h3>AI Study Assistant</h3>
            <p class="muted" id="aiProviderLabel"></p>
          </div>
          <button class="icon-btn" id="aiSettings" title="AI settings">&#9881;</button>
        </div>
        <div class="ai-chat-messages" id="aiMessages">
          <div class="ai-message assistant">Hi! I'm your AI study assistant. Ask me anything about this topic, or request:
            <ul><li>Explanations in simpler terms</li><li>More examples</li><li>Practice questions</li><li>Connections to other concepts</li></ul>
          </div>
        </div>
        <div class="ai-input-group">
          <input type="text" class="ai-input" id="aiInput" placeholder="Ask a question...">
          <button class="ai-send-btn" id="aiSend">Send</button>
        </div>
      </div>
      <div class="quick-actions">
        <h4 class="muted">Quick Actions</h4>
        <button class="action-btn" data-quick="quizzes">Review All Quizzes</button>
        <button class="action-btn" data-quick="summary">Generate Summary</button>
        <button class="action-btn" data-quick="print">Print Notes</button>
      </div>
      <div class="shortcuts muted">
        <div><kbd>Alt+A</kbd> Focus AI</div>
        <div><kbd>Alt+S</kbd> Summary</div>
      </div>
    </aside>
  </div>

  <div class="drawer" id="drawer" hidden>
    <div class="drawer-backdrop" data-drawer-close></div>
    <div class="drawer-sheet" id="drawerSheet"><button class="icon-btn drawer-close" data-drawer-close>&times;</button></div>
  </div>

  <div class="modal" id="aiConfigModal" hidden>
    <div class="modal-card">
      <h3>AI provider</h3>
      <label>Provider <select id="cfgProvider"></select></label>
      <label>Model <input id="cfgModel" list="cfgModels"><datalist id="cfgModels"></datalist></label>
      <label id="cfgKeyRow">API key <input id="cfgKey" type="password" autocomplete="off"></label>
      <a id="cfgKeyHint" target="_blank" rel="noopener" class="muted small"></a>
      <label id="cfgEndpointRow">Endpoint <input id="cfgEndpoint"></label>
      <p class="error" id="cfgError"></p>
      <div class="modal-actions">
        <button class="action-btn small" id="cfgCancel">Cancel</button>
        <button class="action-btn small primary" id="cfgSave">Save</button>
      </div>
    </div>
  </div>

  <nav class="bottom-nav" id="bottomNav"></nav>

  <script src="./app-shell.js?v={{.AssetVersion}}"></script>
</body>
</html>
`

// portalTemplate is the course index written next to the html/ directory.
const portalTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="./html/app-shell.css?v={{.AssetVersion}}">
</head>
<body data-shell-page="portal" data-breakpoint="{{.Breakpoint}}">
  <main class="portal">
    <h1>{{.Title}}</h1>
    <input type="search" id="lectureSearch" class="ai-input" placeholder="Search lectures...">
    <ul class="lecture-list" id="lectureList"></ul>
  </main>
  <nav class="bottom-nav" id="bottomNav"></nav>
  <script src="./html/app-shell.js?v={{.AssetVersion}}"></script>
</body>
</html>
`

const cssContent = `:root {
  --bg-primary: #1a1a2e;
  --bg-secondary: #16213e;
  --bg-tertiary: #1f2b47;
  --bg-elevated: #263352;
  --bg-card: #1c2a45;
  --text-primary: #edf2f7;
  --text-secondary: #cbd5e0;
  --text-tertiary: #a0aec0;
  --accent-primary: #f6c177;
  --accent-secondary: #a3d9a5;
  --accent-warning: #fb7185;
  --border-color: rgba(255,255,255,0.08);
  --radius-sm: 8px;
  --left-width: 280px;
  --right-width: 320px;
  --font-mono: ui-monospace, SFMono-Regular, Menlo, monospace;
}
* { box-sizing: border-box; }
body { margin: 0; background: var(--bg-primary); color: var(--text-primary); font-family: Inter, -apple-system, "Helvetica Neue", sans-serif; line-height: 1.7; padding-bottom: 64px; }
[hidden] { display: none !important; }
.muted { color: var(--text-tertiary); font-size: 0.85rem; }
.small { font-size: 0.8rem; }
.error { color: var(--accent-warning); font-size: 0.85rem; min-height: 1em; }
.progress-tracker { position: fixed; top: 0; left: 0; right: 0; height: 3px; z-index: 100; }
.progress-bar { height: 100%; width: 0; background: linear-gradient(90deg, var(--accent-primary), var(--accent-secondary)); }
.page-container { display: grid; grid-template-columns: var(--left-width) 1fr var(--right-width); gap: 8px; min-height: 100vh; }
.sidebar-left, .sidebar-right { position: sticky; top: 0; height: 100vh; overflow-y: auto; padding: 1.25rem; background: var(--bg-secondary); }
.sidebar-tabs { display: flex; gap: 0.25rem; margin-bottom: 1rem; }
.sidebar-tab { flex: 1; background: none; border: 1px solid var(--border-color); color: var(--text-secondary); border-radius: var(--radius-sm); padding: 0.35rem; cursor: pointer; }
.sidebar-tab.active { background: var(--bg-elevated); color: var(--accent-primary); }
.toc { list-style: none; padding: 0; }
.toc li { margin-bottom: 0.75rem; }
.toc-link { color: var(--text-secondary); text-decoration: none; }
.toc-link:hover { color: var(--accent-primary); }
.course-stats { margin-top: 3rem; padding: 1rem; background: var(--bg-elevated); border-radius: var(--radius-sm); font-size: 0.85rem; }
#pdfFrame { width: 100%; height: calc(100vh - 140px); border: none; border-radius: var(--radius-sm); background: var(--bg-tertiary); }
.notes-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 0.75rem; }
.notes-list { display: flex; flex-direction: column; gap: 0.5rem; max-height: 32vh; overflow-y: auto; }
.note-card { background: var(--bg-card); border: 1px solid var(--border-color); border-radius: var(--radius-sm); padding: 0.6rem; cursor: pointer; font-size: 0.85rem; }
.note-card.active { border-color: var(--accent-primary); }
.note-card.focused { box-shadow: inset 3px 0 0 var(--accent-secondary); }
.note-citation { border-left: 2px solid var(--accent-primary); padding-left: 0.5rem; color: var(--text-tertiary); font-style: italic; margin-bottom: 0.35rem; }
.note-meta { display: flex; justify-content: space-between; color: var(--text-tertiary); font-size: 0.75rem; margin-top: 0.35rem; }
.note-meta button { background: none; border: none; color: var(--text-tertiary); cursor: pointer; }
.note-reader { margin-top: 0.75rem; padding: 0.75rem; background: var(--bg-elevated); border-radius: var(--radius-sm); font-size: 0.88rem; }
.reader-title { color: var(--text-tertiary); font-size: 0.75rem; margin-bottom: 0.35rem; }
.note-composer { margin-top: 0.75rem; border-top: 1px solid var(--border-color); padding-top: 0.75rem; }
.note-composer textarea { width: 100%; min-height: 80px; background: var(--bg-primary); border: 1px solid var(--border-color); border-radius: var(--radius-sm); padding: 0.5rem; color: var(--text-primary); font-family: var(--font-mono); font-size: 0.85rem; resize: vertical; }
.main-content { padding: 3rem 2.5rem; max-width: 920px; margin: 0 auto; font-family: "Noto Serif SC", Georgia, serif; }
.subtitle { font-size: 1.1rem; color: var(--text-tertiary); margin-bottom: 2rem; }
.concept-section { margin-top: 4rem; }
.feynman-block { border-left: 4px solid var(--accent-primary); background: var(--bg-card); padding: 1rem 1.25rem; border-radius: 0 var(--radius-sm) var(--radius-sm) 0; margin: 1.25rem 0; }
.feynman-block.overview { border-left-color: #9f7aea; }
.feynman-block.matters { border-left-color: var(--accent-secondary); }
.feynman-block.mistakes { border-left-color: var(--accent-warning); }
.expandable { border: 1px solid var(--border-color); border-radius: var(--radius-sm); margin: 1rem 0; }
.expandable-header { display: flex; justify-content: space-between; padding: 0.75rem 1rem; cursor: pointer; }
.expandable-content { display: none; padding: 0 1rem 1rem; }
.expandable.open .expandable-content { display: block; }
.from-lecture { margin-top: 1rem; padding: 1rem; background: var(--bg-elevated); border-radius: var(--radius-sm); font-size: 0.95rem; color: var(--text-tertiary); }
.chart-container, .diagram-container { background: var(--bg-card); border-radius: var(--radius-sm); padding: 1rem; margin: 1.25rem 0; }
.chart-title, .diagram-title { font-weight: 600; margin-bottom: 0.5rem; }
.chart-caption, .diagram-caption { color: var(--text-tertiary); font-size: 0.85rem; margin-top: 0.5rem; }
.comparison-block { display: grid; grid-template-columns: 1fr auto 1fr; gap: 1rem; margin: 1.25rem 0; }
.comparison-side { background: var(--bg-card); border-radius: var(--radius-sm); padding: 1rem; }
.comparison-divider { align-self: center; color: var(--text-tertiary); }
.stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: 0.75rem; margin: 1.25rem 0; }
.stat-card { background: var(--bg-card); border-radius: var(--radius-sm); padding: 1rem; text-align: center; }
.stat-value { font-size: 1.6rem; color: var(--accent-primary); font-weight: 700; }
.quiz-container { background: var(--bg-card); border-radius: var(--radius-sm); padding: 1rem; margin: 1rem 0; }
.quiz-option { padding: 0.5rem 0.75rem; border: 1px solid var(--border-color); border-radius: var(--radius-sm); margin: 0.35rem 0; cursor: pointer; }
.quiz-option.correct { border-color: var(--accent-secondary); }
.quiz-option.incorrect { border-color: var(--accent-warning); }
.quiz-feedback { display: none; margin-top: 0.5rem; font-size: 0.9rem; }
.quiz-feedback.show { display: block; }
.completion { margin-top: 4rem; padding: 2rem; background: linear-gradient(135deg, var(--accent-primary), var(--accent-secondary)); border-radius: 12px; text-align: center; color: #1a1a2e; }
.ai-chat { display: flex; flex-direction: column; height: 60vh; }
.ai-chat-header { display: flex; justify-content: space-between; align-items: flex-start; }
.ai-chat-header h3 { margin: 0; }
.ai-chat-messages { flex: 1; overflow-y: auto; display: flex; flex-direction: column; gap: 0.5rem; margin: 0.75rem 0; }
.ai-message { padding: 0.6rem 0.8rem; border-radius: var(--radius-sm); font-size: 0.9rem; }
.ai-message.user { background: var(--bg-elevated); align-self: flex-end; }
.ai-message.assistant { background: var(--bg-card); }
.ai-message.error { border: 1px solid var(--accent-warning); }
.ai-settings-link { display: block; margin-top: 0.4rem; background: none; border: none; padding: 0; color: var(--accent-warning); cursor: pointer; text-decoration: underline; font-size: 0.85rem; }
.ai-input-group { display: flex; gap: 0.35rem; }
.ai-input { flex: 1; background: var(--bg-primary); border: 1px solid var(--border-color); border-radius: var(--radius-sm); padding: 0.5rem; color: var(--text-primary); }
.ai-send-btn, .action-btn { background: var(--bg-elevated); color: var(--text-primary); border: 1px solid var(--border-color); border-radius: var(--radius-sm); padding: 0.5rem 0.75rem; cursor: pointer; text-decoration: none; }
.action-btn { display: block; width: 100%; margin-bottom: 0.5rem; text-align: center; }
.action-btn.small { display: inline-block; width: auto; padding: 0.3rem 0.6rem; font-size: 0.8rem; }
.action-btn.primary { color: var(--accent-secondary); }
.icon-btn { background: none; border: none; color: var(--text-tertiary); font-size: 1.2rem; cursor: pointer; }
.quick-actions, .shortcuts { margin-top: 2rem; }
.highlight-tooltip { position: absolute; display: none; gap: 0.25rem; z-index: 1000; }
.highlight-tooltip.show { display: flex; }
.text-highlight { background: rgba(246,193,119,0.35); color: inherit; }
.inline-note-editor { position: absolute; z-index: 1001; width: min(420px, 90vw); background: var(--bg-card); border: 1px solid var(--border-color); border-radius: 12px; padding: 0.65rem; box-shadow: 0 16px 36px rgba(0,0,0,0.32); }
.inline-note-editor textarea { width: 100%; min-height: 88px; background: var(--bg-primary); color: var(--text-primary); border: 1px solid var(--border-color); border-radius: var(--radius-sm); padding: 0.5rem; }
.modal { position: fixed; inset: 0; background: rgba(0,0,0,0.55); display: flex; align-items: center; justify-content: center; z-index: 2000; }
.modal-card { background: var(--bg-secondary); border-radius: 12px; padding: 1.25rem; width: min(440px, 92vw); display: flex; flex-direction: column; gap: 0.6rem; }
.modal-card input, .modal-card select { width: 100%; background: var(--bg-primary); color: var(--text-primary); border: 1px solid var(--border-color); border-radius: var(--radius-sm); padding: 0.4rem; }
.modal-actions { display: flex; justify-content: flex-end; gap: 0.5rem; }
.drawer { position: fixed; inset: 0; z-index: 1500; }
.drawer-backdrop { position: absolute; inset: 0; background: rgba(0,0,0,0.5); }
.drawer-sheet { position: absolute; left: 0; right: 0; bottom: 0; max-height: 85vh; overflow-y: auto; background: var(--bg-secondary); border-radius: 14px 14px 0 0; padding: 1rem; }
.drawer-close { position: absolute; right: 0.75rem; top: 0.5rem; }
.bottom-nav { position: fixed; left: 0; right: 0; bottom: 0; display: flex; justify-content: space-around; background: var(--bg-secondary); border-top: 1px solid var(--border-color); padding: 0.4rem 0; z-index: 1400; }
.bottom-nav button { background: none; border: none; color: var(--text-secondary); font-size: 0.8rem; cursor: pointer; padding: 0.35rem 0.6rem; }
.bottom-nav button:disabled { opacity: 0.35; cursor: default; }
.portal { max-width: 760px; margin: 0 auto; padding: 3rem 1.5rem; }
.lecture-list { list-style: none; padding: 0; }
.lecture-list li { margin: 0.5rem 0; }
.lecture-list a { display: block; padding: 0.75rem 1rem; background: var(--bg-card); border-radius: var(--radius-sm); color: var(--text-primary); text-decoration: none; }
.lecture-list .pdf-link { display: inline; background: none; padding: 0 1rem; font-size: 0.8rem; color: var(--text-tertiary); }
@media (max-width: 1200px) {
  .page-container { grid-template-columns: 1fr; }
  .sidebar-left, .sidebar-right { display: none; }
  .main-content { padding: 2rem 1.25rem; }
}
@media print {
  .sidebar-left, .sidebar-right, .bottom-nav, .progress-tracker { display: none; }
  .page-container { display: block; }
}
`

// jsContent is the shell bundle shared by lecture pages and the portal. It
// talks to the local server's JSON API and degrades to a static page when
// the API is unreachable.
const jsContent = `(function () {
  'use strict';

  var body = document.body;
  var page = body.getAttribute('data-shell-page') || 'portal';
  var breakpoint = parseInt(body.getAttribute('data-breakpoint') || '1200', 10);

  function $(id) { return document.getElementById(id); }

  function api(method, url, payload) {
    var init = { method: method, headers: {} };
    if (payload !== undefined) {
      init.headers['Content-Type'] = 'application/json';
      init.body = JSON.stringify(payload);
    }
    return fetch(url, init).then(function (res) {
      var type = res.headers.get('Content-Type') || '';
      var parsed = type.indexOf('application/json') >= 0 ? res.json() : res.text();
      return parsed.then(function (data) {
        if (!res.ok) {
          var err = new Error((data && data.error) || ('HTTP ' + res.status));
          err.data = data || {};
          err.status = res.status;
          throw err;
        }
        return data;
      });
    });
  }

  function escapeHTML(s) {
    return String(s == null ? '' : s)
      .replace(/&/g, '&amp;').replace(/</g, '&lt;').replace(/>/g, '&gt;')
      .replace(/"/g, '&quot;').replace(/'/g, '&#39;');
  }

  function preview(s, n) {
    var chars = Array.from(String(s || ''));
    return chars.length > n ? chars.slice(0, n).join('') + '...' : chars.join('');
  }

  // Charts, diagrams and formulas.
  window.initChart = function (el, cfg) {
    if (!el || typeof Chart === 'undefined') return;
    if (Chart.defaults) {
      Chart.defaults.color = '#a8a8b3';
      Chart.defaults.borderColor = 'rgba(255,255,255,0.08)';
    }
    cfg.options = cfg.options || {};
    cfg.options.responsive = true;
    cfg.options.maintainAspectRatio = true;
    new Chart(el, cfg);
  };

  function initDiagrams() {
    if (typeof mermaid === 'undefined') return;
    mermaid.initialize({ startOnLoad: false, theme: 'dark', securityLevel: 'strict' });
    try { mermaid.run({ querySelector: '.mermaid' }); } catch (e) { console.warn('mermaid', e); }
  }

  function initMath() {
    if (typeof renderMathInElement === 'undefined') return;
    renderMathInElement(document.querySelector('.main-content') || body, {
      delimiters: [
        { left: '$$', right: '$$', display: true },
        { left: '$', right: '$', display: false },
        { left: '\\(', right: '\\)', display: false },
        { left: '\\[', right: '\\]', display: true }
      ],
      throwOnError: false
    });
  }

  // Lecture content behaviour.
  function initExpandables() {
    document.querySelectorAll('.expandable-header').forEach(function (h) {
      h.addEventListener('click', function () { h.parentElement.classList.toggle('open'); });
    });
  }

  function initQuizzes() {
    document.querySelectorAll('.quiz-container').forEach(function (quiz) {
      var options = quiz.querySelectorAll('.quiz-option');
      options.forEach(function (opt) {
        opt.addEventListener('click', function () {
          if (quiz.classList.contains('answered')) return;
          quiz.classList.add('answered');
          var correct = opt.getAttribute('data-correct') === 'true';
          options.forEach(function (o) {
            o.classList.add('disabled');
            if (o.getAttribute('data-correct') === 'true') o.classList.add('correct');
          });
          if (!correct) opt.classList.add('incorrect');
          var fb = quiz.querySelector('.quiz-feedback.' + (correct ? 'correct' : 'incorrect'));
          if (fb) fb.classList.add('show');
        });
      });
    });
  }

  function initProgress() {
    var bar = $('progressBar');
    if (!bar) return;
    window.addEventListener('scroll', function () {
      var h = document.documentElement;
      var total = h.scrollHeight - h.clientHeight;
      bar.style.width = (total > 0 ? (h.scrollTop / total) * 100 : 0) + '%';
    });
  }

  function courseContext() {
    var main = document.querySelector('.main-content');
    return main ? main.innerText.slice(0, 6000) : '';
  }

  function currentSection() {
    var sections = document.querySelectorAll('.concept-section');
    var name = '';
    sections.forEach(function (s) {
      if (s.getBoundingClientRect().top < window.innerHeight / 3) {
        var h = s.querySelector('h2');
        if (h) name = h.textContent;
      }
    });
    return name;
  }

  // Sidebar tabs.
  function showTab(name) {
    var target = $('panel-' + name);
    if (!target) {
      if (name === 'ai') {
        var input = $('aiInput');
        if (useDrawer()) openDrawer($('sidebarRight'));
        if (input) input.focus();
      }
      return;
    }
    document.querySelectorAll('.sidebar-tab').forEach(function (t) {
      t.classList.toggle('active', t.getAttribute('data-tab') === name);
    });
    document.querySelectorAll('.sidebar-panel').forEach(function (p) {
      p.hidden = p.id !== 'panel-' + name;
    });
    if (useDrawer()) openDrawer($('sidebarLeft'));
    if (name === 'notes') notes.refresh();
  }

  function initTabs() {
    document.querySelectorAll('.sidebar-tab').forEach(function (t) {
      t.addEventListener('click', function () { showTab(t.getAttribute('data-tab')); });
    });
    var m = /(?:^|[#&])tab=([a-z]+)/.exec(location.hash);
    if (m) showTab(m[1]);
  }

  // Drawer: below the breakpoint panels are moved into the sheet and put
  // back where they came from when it closes.
  var drawerState = null;

  function useDrawer() { return window.innerWidth <= breakpoint; }

  function openDrawer(panel) {
    var drawer = $('drawer');
    var sheet = $('drawerSheet');
    if (!drawer || !sheet || !panel) return;
    closeDrawer();
    drawerState = { panel: panel, parent: panel.parentNode, next: panel.nextSibling };
    sheet.appendChild(panel);
    panel.style.display = 'block';
    drawer.hidden = false;
  }

  function closeDrawer() {
    var drawer = $('drawer');
    if (!drawerState) { if (drawer) drawer.hidden = true; return; }
    var s = drawerState;
    s.panel.style.display = '';
    s.parent.insertBefore(s.panel, s.next);
    drawerState = null;
    if (drawer) drawer.hidden = true;
  }

  function initDrawer() {
    document.querySelectorAll('[data-drawer-close]').forEach(function (el) {
      el.addEventListener('click', closeDrawer);
    });
    window.addEventListener('resize', function () { if (!useDrawer()) closeDrawer(); });
    document.addEventListener('keydown', function (e) { if (e.key === 'Escape') closeDrawer(); });
  }

  // Notes.
  var notesBase = '/api/notes/' + encodeURIComponent(document.title);

  var notes = {
    state: { notes: [], activeId: null, focusId: null, draft: '' },

    refresh: function () {
      if (!$('notesList')) return Promise.resolve();
      return api('GET', notesBase).then(function (data) {
        notes.state = data;
        notes.render();
      }).catch(function (e) { console.warn('notes', e); });
    },

    render: function () {
      var list = $('notesList');
      var st = notes.state;
      $('notesCount').textContent = st.notes.length + (st.notes.length === 1 ? ' note' : ' notes');
      if (!st.notes.length) {
        list.innerHTML = '<p class="muted">No notes yet. Select text in the lecture or write one below.</p>';
      } else {
        list.innerHTML = st.notes.map(function (n) {
          var cls = 'note-card' + (n.id === st.activeId ? ' active' : '') + (n.id === st.focusId ? ' focused' : '');
          return '<div class="' + cls + '" data-id="' + n.id + '">' +
            (n.section ? '<div class="note-section">' + escapeHTML(n.section) + '</div>' : '') +
            (n.citation ? '<div class="note-citation">' + escapeHTML(preview(n.citation, 140)) + '</div>' : '') +
            '<div class="note-body">' + escapeHTML(preview(n.body, 140)) + '</div>' +
            '<div class="note-meta"><span>' + new Date(n.timestamp).toLocaleString() + '</span><span>' +
            '<button data-act="focus">' + (n.id === st.focusId ? 'Unpin' : 'Pin') + '</button>' +
            '<button data-act="delete">Delete</button></span></div></div>';
        }).join('');
      }
      var input = $('noteInput');
      if (input && document.activeElement !== input && !input.value) input.value = st.draft || '';
      notes.renderReader();
      notes.renderDraft();
    },

    renderReader: function () {
      var st = notes.state;
      var reader = document.querySelector('#noteReader .reader-content');
      var active = st.notes.filter(function (n) { return n.id === st.activeId; })[0];
      if (!active) {
        reader.textContent = 'Click a note in history to read it here.';
        return;
      }
      var text = (active.citation ? '> ' + active.citation + '\n\n' : '') + active.body;
      api('POST', '/api/markdown', { text: text }).then(function (r) { reader.innerHTML = r.html; });
    },

    renderDraft: function () {
      var input = $('noteInput');
      var out = $('noteDraftPreviewContent');
      if (!input || !out) return;
      if (!input.value.trim()) { out.innerHTML = '<span class="muted">Nothing to preview.</span>'; return; }
      api('POST', '/api/markdown', { text: input.value }).then(function (r) { out.innerHTML = r.html; });
    },

    add: function (citation, text, section) {
      return api('POST', notesBase, { citation: citation, body: text, section: section }).then(notes.refresh);
    },

    init: function () {
      var list = $('notesList');
      if (!list) return;
      list.addEventListener('click', function (e) {
        var card = e.target.closest('.note-card');
        if (!card) return;
        var id = card.getAttribute('data-id');
        var act = e.target.getAttribute('data-act');
        var req;
        if (act === 'delete') req = api('DELETE', notesBase + '/' + id);
        else if (act === 'focus') req = api('POST', notesBase + '/' + id + '/focus');
        else req = api('POST', notesBase + '/' + id + '/active');
        req.then(notes.refresh);
      });
      var input = $('noteInput');
      var timer = null;
      input.addEventListener('input', function () {
        clearTimeout(timer);
        timer = setTimeout(function () {
          api('PUT', notesBase + '/draft', { text: input.value });
          notes.renderDraft();
        }, 300);
      });
      $('noteAdd').addEventListener('click', function () {
        var text = input.value.trim();
        if (!text) return;
        notes.add('', text, currentSection()).then(function () {
          input.value = '';
          api('PUT', notesBase + '/draft', { text: '' });
          notes.renderDraft();
        });
      });
      $('notesExport').addEventListener('click', function (e) {
        e.preventDefault();
        location.href = notesBase + '/export?source=' + encodeURIComponent(body.getAttribute('data-source-file') || '');
      });
      notes.refresh();
    }
  };

  // Selection -> "+ Note" tooltip with an inline editor.
  function initSelectionNotes() {
    var main = document.querySelector('.main-content');
    if (!main) return;
    var tip = document.createElement('div');
    tip.className = 'highlight-tooltip';
    tip.innerHTML = '<button class="action-btn small" data-sel="open">+ Note</button>';
    var editor = document.createElement('div');
    editor.className = 'inline-note-editor';
    editor.hidden = true;
    editor.innerHTML = '<div class="note-citation"></div>' +
      '<textarea placeholder="Your note (Markdown supported)"></textarea>' +
      '<div class="modal-actions"><button class="action-btn small" data-sel="cancel">Cancel</button>' +
      '<button class="action-btn small primary" data-sel="save">Save</button></div>';
    body.appendChild(tip);
    body.appendChild(editor);
    var area = editor.querySelector('textarea');
    var quote = '';
    var section = '';
    var top = 0;
    var left = 0;

    function hide() {
      tip.classList.remove('show');
      editor.hidden = true;
      area.value = '';
    }

    document.addEventListener('mouseup', function (e) {
      if (tip.contains(e.target) || editor.contains(e.target)) return;
      var sel = window.getSelection();
      var text = sel ? sel.toString().trim() : '';
      if (!text || !main.contains(sel.anchorNode)) {
        if (editor.hidden) hide();
        return;
      }
      quote = text;
      var parent = sel.anchorNode.parentElement;
      var sec = parent && parent.closest('.concept-section');
      var h = sec && sec.querySelector('h2');
      section = h ? h.textContent : currentSection();
      var rect = sel.getRangeAt(0).getBoundingClientRect();
      top = window.scrollY + rect.bottom + 6;
      left = window.scrollX + rect.left;
      tip.style.top = top + 'px';
      tip.style.left = left + 'px';
      tip.classList.add('show');
    });

    function onClick(e) {
      var act = e.target.getAttribute('data-sel');
      if (act === 'open') {
        tip.classList.remove('show');
        editor.querySelector('.note-citation').textContent = preview(quote, 140);
        editor.style.top = top + 'px';
        editor.style.left = left + 'px';
        editor.hidden = false;
        area.focus();
      } else if (act === 'cancel') {
        hide();
      } else if (act === 'save') {
        notes.add(quote, area.value.trim(), section).then(hide);
      }
    }
    tip.addEventListener('click', onClick);
    editor.addEventListener('click', onClick);
  }

  // AI chat.
  var chat = {
    session: '',
    busy: false,

    append: function (role, html) {
      var box = $('aiMessages');
      var div = document.createElement('div');
      div.className = 'ai-message ' + role;
      div.innerHTML = html;
      box.appendChild(div);
      box.scrollTop = box.scrollHeight;
      return div;
    },

    // send reports whether the message was accepted.
    send: function (message) {
      if (chat.busy || !message) return false;
      chat.busy = true;
      $('aiSend').disabled = true;
      chat.append('user', escapeHTML(message));
      var pending = chat.append('assistant thinking', 'Thinking...');
      api('POST', '/api/ai/chat', { session: chat.session, page: document.title, context: courseContext(), message: message })
        .then(function (r) {
          chat.session = r.session;
          pending.className = 'ai-message assistant';
          pending.innerHTML = r.html;
        })
        .catch(function (e) {
          if (e.data && e.data.session) chat.session = e.data.session;
          pending.className = 'ai-message assistant error';
          pending.textContent = e.message;
          var fix = document.createElement('button');
          fix.type = 'button';
          fix.className = 'ai-settings-link';
          fix.textContent = 'AI settings';
          fix.addEventListener('click', function () { settings.open(); });
          pending.appendChild(fix);
          if (e.data && e.data.action === 'configure') settings.open();
        })
        .then(function () {
          chat.busy = false;
          $('aiSend').disabled = false;
        });
      return true;
    },

    init: function () {
      var input = $('aiInput');
      if (!input) return;
      var submit = function () {
        if (chat.send(input.value.trim())) input.value = '';
      };
      $('aiSend').addEventListener('click', submit);
      input.addEventListener('keydown', function (e) {
        if (e.key === 'Enter') submit();
      });
      document.querySelectorAll('[data-quick]').forEach(function (b) {
        b.addEventListener('click', function () {
          var q = b.getAttribute('data-quick');
          if (q === 'print') window.print();
          else if (q === 'summary') chat.send('Please generate a concise summary of the key concepts in this lecture.');
          else if (q === 'quizzes') {
            var first = document.querySelector('.quiz-container');
            if (first) first.scrollIntoView({ behavior: 'smooth' });
          }
        });
      });
      document.addEventListener('keydown', function (e) {
        if (!e.altKey) return;
        if (e.key === 'a') { e.preventDefault(); showTab('ai'); }
        if (e.key === 's') { e.preventDefault(); chat.send('Please generate a concise summary of the key concepts in this lecture.'); }
      });
    }
  };

  // Provider settings.
  var settings = {
    providers: [],

    label: function (cfg) {
      var p = settings.find(cfg.provider);
      var el = $('aiProviderLabel');
      if (el) el.textContent = p ? p.label + (cfg.model ? ' · ' + cfg.model : '') : 'No provider configured';
    },

    find: function (id) {
      return settings.providers.filter(function (p) { return p.id === id; })[0];
    },

    sync: function () {
      var p = settings.find($('cfgProvider').value);
      if (!p) return;
      $('cfgKeyRow').hidden = !p.needsKey;
      $('cfgEndpointRow').hidden = !(p.needsEndpoint || p.defaultEndpoint);
      if (!$('cfgEndpoint').value) $('cfgEndpoint').value = p.defaultEndpoint || '';
      var hint = $('cfgKeyHint');
      hint.hidden = !p.keyHintUrl;
      hint.href = p.keyHintUrl || '#';
      hint.textContent = p.keyHintUrl ? 'Get an API key' : '';
      $('cfgModels').innerHTML = (p.models || []).map(function (m) {
        return '<option value="' + escapeHTML(m) + '">';
      }).join('');
      if (!$('cfgModel').value && p.models && p.models.length) $('cfgModel').value = p.models[0];
    },

    open: function () {
      var modal = $('aiConfigModal');
      if (!modal) return;
      $('cfgError').textContent = '';
      api('GET', '/api/ai/config').then(function (r) {
        var cfg = r.config || {};
        $('cfgProvider').value = cfg.provider || 'proxy';
        $('cfgModel').value = cfg.model || '';
        $('cfgEndpoint').value = cfg.endpoint || '';
        $('cfgKey').value = '';
        $('cfgKey').placeholder = cfg.apiKey || '';
        settings.sync();
        modal.hidden = false;
      });
    },

    save: function () {
      var payload = {
        provider: $('cfgProvider').value,
        model: $('cfgModel').value.trim(),
        endpoint: $('cfgEndpoint').value.trim(),
        apiKey: $('cfgKey').value.trim()
      };
      api('PUT', '/api/ai/config', payload).then(function (r) {
        settings.label(r.config || {});
        $('aiConfigModal').hidden = true;
      }).catch(function (e) { $('cfgError').textContent = e.message; });
    },

    init: function () {
      if (!$('aiConfigModal')) return;
      api('GET', '/api/providers').then(function (list) {
        settings.providers = list;
        $('cfgProvider').innerHTML = list.map(function (p) {
          return '<option value="' + escapeHTML(p.id) + '">' + escapeHTML(p.label) + '</option>';
        }).join('');
        return api('GET', '/api/ai/config');
      }).then(function (r) { settings.label(r.config || {}); })
        .catch(function (e) { console.warn('ai config', e); });
      $('cfgProvider').addEventListener('change', function () {
        $('cfgModel').value = '';
        $('cfgEndpoint').value = '';
        settings.sync();
      });
      $('aiSettings').addEventListener('click', settings.open);
      $('cfgCancel').addEventListener('click', function () { $('aiConfigModal').hidden = true; });
      $('cfgSave').addEventListener('click', settings.save);
    }
  };

  // Bottom navigation.
  function initBottomNav() {
    var nav = $('bottomNav');
    if (!nav) return;
    var q = '?path=' + encodeURIComponent(location.pathname) + '&marker=' + encodeURIComponent(page);
    api('GET', '/api/shell/actions' + q).then(function (r) {
      if (r.layout && r.layout.drawerBreakpoint) breakpoint = r.layout.drawerBreakpoint;
      nav.innerHTML = '';
      r.actions.forEach(function (a) {
        var b = document.createElement('button');
        b.textContent = a.label;
        b.disabled = !!a.disabled;
        b.addEventListener('click', function () {
          if (a.kind === 'navigate') location.href = a.target;
          else if (a.kind === 'focus') { var el = $(a.target); if (el) el.focus(); }
          else if (a.kind === 'switch-tab') showTab(a.target);
        });
        nav.appendChild(b);
      });
    }).catch(function () { nav.hidden = true; });
  }

  // Portal lecture list.
  function initPortal() {
    var list = $('lectureList');
    if (!list) return;
    var search = $('lectureSearch');
    var lectures = [];
    // Index paths are relative to the html/ directory.
    var base = location.origin + '/html/';
    function render() {
      var q = (search.value || '').toLowerCase();
      list.innerHTML = lectures.filter(function (l) {
        return !q || l.title.toLowerCase().indexOf(q) >= 0;
      }).map(function (l) {
        var href = new URL(l.html_path, base).pathname;
        var pdf = l.pdf_path ? new URL(l.pdf_path, base).pathname : '';
        return '<li><a href="' + escapeHTML(href) + '">' + escapeHTML(l.title) + '</a>' +
          (pdf ? '<a class="pdf-link" href="' + escapeHTML(pdf) + '">PDF</a>' : '') + '</li>';
      }).join('');
    }
    search.addEventListener('input', render);
    if (location.hash === '#search') search.focus();
    api('GET', '/api/lectures').then(function (r) {
      lectures = r.lectures || [];
      render();
    }).catch(function () {
      list.innerHTML = '<li class="muted">Lecture index unavailable. Run pdf2study serve.</li>';
    });
  }

  document.addEventListener('DOMContentLoaded', function () {
    initDrawer();
    initBottomNav();
    if (page === 'portal') {
      initPortal();
      return;
    }
    initExpandables();
    initQuizzes();
    initProgress();
    initDiagrams();
    initMath();
    initTabs();
    notes.init();
    initSelectionNotes();
    chat.init();
    settings.init();
  });
})();
`
