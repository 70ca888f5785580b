/*
Package trace generates and decodes per-language instrumentation for
discovering the files a live notebook session reads and writes.

Each supported language has a Strategy producing three self-contained code
fragments: a start fragment that shadows the interpreter's file-open
primitive behind a tracking wrapper, a collect fragment whose value is a JSON
document with the accumulated input/output path sets, and a stop fragment
that restores the original primitive. The fragments have no library
dependencies inside the target interpreter.

Classification happens inside the interpreter: a path is tracked only if its
absolute form lives under the project root captured at injection time and
contains no denylisted substring. Read-only open modes feed the input set;
modes containing 'w', 'a', 'x', or '+' feed the output set. The same rules
are re-applied on the Go side by Normalize, so results from any transport are
filtered identically.

Decoding is strict: collect output must be JSON (possibly wrapped in one
level of interpreter repr quoting). Anything else decodes to nil, never an
error, so detection degrades to "no files found" instead of failing a
session.
*/
package trace
