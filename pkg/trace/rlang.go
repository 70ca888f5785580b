package trace

import "fmt"

// rStrategy replaces base::file, the connection-opening primitive behind
// read.csv, readLines, writeLines and friends. The wrapper is installed into
// both the base package environment and the base namespace: package-internal
// callers (utils, tools) resolve `file` through the base namespace, never
// through the global environment, so a globalenv shadow would miss them.
type rStrategy struct{}

func (rStrategy) Language() string { return "r" }

func (rStrategy) StartCode() string {
	return fmt.Sprintf(`if (!exists(".ck_trace_env", envir = globalenv())) {
    .ck_env <- new.env()
    .ck_env$root <- normalizePath(getwd())
    .ck_env$enabled <- FALSE
    .ck_env$inputs <- character(0)
    .ck_env$outputs <- character(0)
    .ck_env$real_file <- base::file
    .ck_env$deny <- c(%s)
    .ck_env$track <- function(description, open) {
        env <- get(".ck_trace_env", envir = globalenv())
        if (!env$enabled || !is.character(description) || !nzchar(description)) return(invisible(NULL))
        p <- tryCatch(normalizePath(description, mustWork = FALSE), error = function(e) NULL)
        prefix <- paste0(env$root, .Platform$file.sep)
        if (is.null(p) || !startsWith(p, prefix)) return(invisible(NULL))
        for (frag in env$deny) {
            if (grepl(frag, p, fixed = TRUE)) return(invisible(NULL))
        }
        rel <- gsub("\\\\", "/", substring(p, nchar(prefix) + 1))
        m <- as.character(open)
        if (grepl("[wax+]", m)) {
            env$outputs <- union(env$outputs, rel)
        } else {
            env$inputs <- union(env$inputs, rel)
        }
        invisible(NULL)
    }
    assign(".ck_trace_env", .ck_env, envir = globalenv())
    .ck_wrap <- function(description = "", open = "", ...) {
        env <- get(".ck_trace_env", envir = globalenv())
        env$track(description, open)
        env$real_file(description = description, open = open, ...)
    }
    for (.ck_e in list(baseenv(), .BaseNamespaceEnv)) {
        base::unlockBinding("file", .ck_e)
        base::assign("file", .ck_wrap, envir = .ck_e)
        base::lockBinding("file", .ck_e)
    }
    rm(.ck_env, .ck_wrap, .ck_e)
}
.ck_trace_env$enabled <- TRUE
.ck_trace_env$inputs <- character(0)
.ck_trace_env$outputs <- character(0)
invisible(NULL)
`, quoteList(Denylist))
}

func (rStrategy) CollectCode() string {
	return `local({
    env <- get(".ck_trace_env", envir = globalenv())
    esc <- function(v) gsub('"', '\\\\"', gsub("\\\\", "\\\\\\\\", v))
    arr <- function(v) paste0("[", paste0('"', esc(sort(v)), '"', collapse = ","), "]")
    paste0('{"inputs":', arr(env$inputs), ',"outputs":', arr(env$outputs), "}")
})
`
}

func (rStrategy) StopCode() string {
	return `if (exists(".ck_trace_env", envir = globalenv())) {
    .ck_orig <- .ck_trace_env$real_file
    for (.ck_e in list(baseenv(), .BaseNamespaceEnv)) {
        base::unlockBinding("file", .ck_e)
        base::assign("file", .ck_orig, envir = .ck_e)
        base::lockBinding("file", .ck_e)
    }
    .ck_trace_env$enabled <- FALSE
    rm(".ck_trace_env", envir = globalenv())
    rm(.ck_orig, .ck_e)
}
invisible(NULL)
`
}
