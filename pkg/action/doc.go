// Package action provides Action, an immutable named unit of work bound to an
// owning service, together with the Invocable, Deferred and Result types that
// describe how it is called. Registries and dispatchers outside this package
// construct Actions, look them up by Key and invoke them with Apply or Call.
package action
