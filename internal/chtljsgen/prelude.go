package chtljsgen

// runtimePrelude is emitted once per compiled document, before any lowered
// statement, the first time a script{} block produces CHTL-JS output (spec
// 4.4). It is a single constant string per the design note in spec section
// 9 ("the prelude should be a single constant string checked into the
// source of the implementation, loaded at build time; generator code emits
// only uses of it, never its definition").
const runtimePrelude = `function __chtljs_select(selector) {
  if (typeof selector !== "string" || selector.length === 0) return null;
  var idxMatch = selector.match(/^(.*)\[(\d+)\]$/);
  if (idxMatch) {
    var base = __chtljs_select(idxMatch[1]);
    var i = parseInt(idxMatch[2], 10);
    return base ? base[i] : undefined;
  }
  var c = selector[0];
  if (c === "#") return document.getElementById(selector.slice(1));
  if (c === ".") return document.getElementsByClassName(selector.slice(1));
  if (/^[A-Za-z]/.test(selector) && selector.indexOf(" ") === -1) {
    return document.getElementsByTagName(selector);
  }
  return document.querySelectorAll(selector);
}
function __chtljs_listen(element, config) {
  function bindOne(el) {
    for (var key in config) {
      if (Object.prototype.hasOwnProperty.call(config, key) && typeof config[key] === "function") {
        el.addEventListener(key, config[key]);
      }
    }
  }
  if (element && (element instanceof NodeList || element instanceof HTMLCollection)) {
    for (var i = 0; i < element.length; i++) bindOne(element[i]);
  } else if (element) {
    bindOne(element);
  }
}
var __chtljs_delegate_registry = new Map();
function __chtljs_delegate(parent, config) {
  var handlers = __chtljs_delegate_registry.get(parent);
  if (!handlers) {
    handlers = {};
    __chtljs_delegate_registry.set(parent, handlers);
  }
  for (var eventType in config) {
    if (!Object.prototype.hasOwnProperty.call(config, eventType)) continue;
    var entry = config[eventType];
    if (!handlers[eventType]) {
      handlers[eventType] = [];
      parent.addEventListener(eventType, (function (type) {
        return function (ev) {
          var list = handlers[type];
          for (var j = 0; j < list.length; j++) {
            var target = ev.target.closest(list[j].selector);
            if (target) list[j].handler.call(target, ev);
          }
        };
      })(eventType));
    }
    handlers[eventType].push(entry);
  }
}
function __chtljs_animate(config) {
  // target, duration, easing, begin, end, when: contract is a well-formed
  // call carrying the object literal verbatim (spec 4.4).
  return config;
}
`
