package trace

import "fmt"

// pythonStrategy wraps builtins.open. State lives on the builtins module so
// it survives across executions regardless of which namespace runs the
// fragments.
type pythonStrategy struct{}

func (pythonStrategy) Language() string { return "python" }

func (pythonStrategy) StartCode() string {
	return fmt.Sprintf(`import builtins as _ck_b, os as _ck_os
if not hasattr(_ck_b, "_ck_trace_state"):
    _ck_b._ck_trace_state = {
        "root": _ck_os.getcwd(),
        "enabled": False,
        "inputs": set(),
        "outputs": set(),
        "real_open": _ck_b.open,
        "deny": [%s],
    }
    def _ck_track(path, mode):
        st = _ck_b._ck_trace_state
        if not st["enabled"]:
            return
        try:
            p = _ck_os.path.abspath(_ck_os.fspath(path))
        except TypeError:
            return
        if not p.startswith(st["root"] + _ck_os.sep):
            return
        for frag in st["deny"]:
            if frag in p:
                return
        rel = _ck_os.path.relpath(p, st["root"]).replace(_ck_os.sep, "/")
        m = str(mode)
        if any(c in m for c in "wax+"):
            st["outputs"].add(rel)
        elif "r" in m:
            st["inputs"].add(rel)
    def _ck_open(file, mode="r", *args, **kwargs):
        _ck_track(file, mode)
        return _ck_b._ck_trace_state["real_open"](file, mode, *args, **kwargs)
    _ck_b.open = _ck_open
_ck_b._ck_trace_state["enabled"] = True
_ck_b._ck_trace_state["inputs"].clear()
_ck_b._ck_trace_state["outputs"].clear()
`, quoteList(Denylist))
}

func (pythonStrategy) CollectCode() string {
	return `import builtins as _ck_b, json as _ck_json
_ck_json.dumps({
    "inputs": sorted(_ck_b._ck_trace_state["inputs"]),
    "outputs": sorted(_ck_b._ck_trace_state["outputs"]),
}) if hasattr(_ck_b, "_ck_trace_state") else _ck_json.dumps({"inputs": [], "outputs": []})
`
}

func (pythonStrategy) StopCode() string {
	return `import builtins as _ck_b
if hasattr(_ck_b, "_ck_trace_state"):
    _ck_b.open = _ck_b._ck_trace_state["real_open"]
    _ck_b._ck_trace_state["enabled"] = False
    del _ck_b._ck_trace_state
`
}
