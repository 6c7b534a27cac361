package roddriver

// resolveJS evaluates a parsed selector chain in the page and returns every
// match in document order. Text parts match the innermost elements whose
// whitespace-normalized textContent contains (text) or equals (exact) the
// value; script and style content is ignored.
const resolveJS = `function resolve(parts) {
  const norm = (s) => (s || '').replace(/\s+/g, ' ').trim();
  const skip = new Set(['SCRIPT', 'STYLE', 'NOSCRIPT', 'HEAD', 'TITLE']);
  const within = (scope, css) => {
    const found = Array.from(scope.querySelectorAll(css));
    if (scope !== document && scope.matches(css)) found.unshift(scope);
    return found;
  };
  const textMatches = (part) => {
    const exact = part.kind === 'exact';
    const want = exact ? norm(part.value) : norm(part.value).toLowerCase();
    return (el) => {
      if (skip.has(el.tagName)) return false;
      const got = norm(el.textContent);
      return exact ? got === want : got.toLowerCase().includes(want);
    };
  };

  let scopes = [document];
  for (const part of parts) {
    const next = [];
    for (const scope of scopes) {
      if (part.kind === 'css') {
        next.push(...within(scope, part.value));
      } else if (part.kind === 'nth') {
        const all = within(scope, part.value);
        if (all.length >= part.index) next.push(all[part.index - 1]);
      } else if (part.kind === 'text' || part.kind === 'exact') {
        const match = textMatches(part);
        const root = scope === document ? document.body : scope;
        if (!root) continue;
        const all = [root, ...root.querySelectorAll('*')];
        for (const el of all) {
          if (match(el) && !Array.from(el.children).some(match)) next.push(el);
        }
      }
    }
    scopes = Array.from(new Set(next));
    if (scopes.length === 0) break;
  }
  return scopes.filter((el) => el !== document);
}`

const firstMatchJS = `(parts) => (` + resolveJS + `)(parts)[0] || null`

const countMatchesJS = `(parts) => (` + resolveJS + `)(parts).length`
