/*
Package runner contains the stage run session controller: the state machine
that turns one interactive notebook into one recorded pipeline-stage run.

A run is a strict linear sequence with no forking:

	Idle -> Saving -> SessionOpening -> KernelRestarting -> Executing
	     -> Verifying -> Finalizing -> Idle        (success)
	                  -> Idle                      (abort, on any failure)

The controller owns nothing it touches: the notebook and kernel belong to
the host frontend, run state is backend-owned past SessionOpening, and the
plan received at open time is passed back verbatim at finalize time. A
per-notebook run lock taken before Saving rejects concurrent runs on the
same notebook.

The controller also drives stage I/O detection, both client-side (via
pkg/trace instrumentation) and server-side (via the backend detect
endpoints).
*/
package runner
