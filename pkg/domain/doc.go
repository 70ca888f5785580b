/*
Package domain contains the core domain models for the nbstage client.

It defines the entities shared by the run-session protocol, such as stage
definitions, the opaque run-session plan issued by the pipeline store, trace
results produced by interpreter instrumentation, and the process-wide run
state. This package is kept pure and free of external dependencies like I/O
or transport, following Hexagonal Architecture principles.

# Key Entities

  - StageDefinition: A named, reproducible unit of computation with declared
    inputs, outputs, and an execution environment.
  - RunSessionPlan: The backend-issued snapshot opened per run and passed back
    verbatim at finalize time.
  - TraceResult: Input/output path sets discovered by interpreter
    instrumentation.
  - RunState: The process-wide "is a run active" snapshot broadcast to UI
    observers.
*/
package domain
