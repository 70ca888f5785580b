package trace

import "fmt"

// juliaStrategy shadows Base.open with a Main-level binding; code compiled
// in Main after the start fragment resolves the shadow first. The original
// function stays reachable through the saved reference.
type juliaStrategy struct{}

func (juliaStrategy) Language() string { return "julia" }

func (juliaStrategy) StartCode() string {
	return fmt.Sprintf(`if !isdefined(Main, :_ck_trace_state)
    const _ck_trace_state = Dict{String,Any}(
        "root" => pwd(),
        "enabled" => false,
        "inputs" => Set{String}(),
        "outputs" => Set{String}(),
    )
    const _ck_deny = [%s]
    const _ck_real_open = Base.open
    function _ck_track(path::AbstractString, mode::AbstractString)
        _ck_trace_state["enabled"] || return nothing
        p = abspath(String(path))
        root = _ck_trace_state["root"]::String
        startswith(p, root * "/") || return nothing
        for frag in _ck_deny
            occursin(frag, p) && return nothing
        end
        rel = replace(relpath(p, root), '\\' => '/')
        if any(c -> occursin(c, mode), ("w", "a", "x", "+"))
            push!(_ck_trace_state["outputs"], rel)
        elseif occursin("r", mode)
            push!(_ck_trace_state["inputs"], rel)
        end
        nothing
    end
    function _ck_open(f::AbstractString, m::AbstractString = "r"; kwargs...)
        _ck_track(f, m)
        _ck_real_open(f, m; kwargs...)
    end
    _ck_open(args...; kwargs...) = _ck_real_open(args...; kwargs...)
    try
        Main.eval(:(open = _ck_open))
    catch err
        # Rebinding fails once 'open' has been resolved as a Base import in
        # this session; tracking then sees no calls.
        @warn "could not shadow open; file tracking inactive" err
    end
end
_ck_trace_state["enabled"] = true
empty!(_ck_trace_state["inputs"])
empty!(_ck_trace_state["outputs"])
nothing
`, quoteList(Denylist))
}

func (juliaStrategy) CollectCode() string {
	return `if isdefined(Main, :_ck_trace_state)
    let esc = x -> replace(replace(x, "\\" => "\\\\"), "\"" => "\\\""),
        arr = v -> "[" * join(["\"" * esc(x) * "\"" for x in sort(collect(v))], ",") * "]"
        "{\"inputs\":" * arr(_ck_trace_state["inputs"]) * ",\"outputs\":" * arr(_ck_trace_state["outputs"]) * "}"
    end
else
    "{\"inputs\":[],\"outputs\":[]}"
end
`
}

func (juliaStrategy) StopCode() string {
	return `if isdefined(Main, :_ck_trace_state)
    try
        Main.eval(:(open = Base.open))
    catch err
        @warn "could not restore open" err
    end
    _ck_trace_state["enabled"] = false
end
nothing
`
}
