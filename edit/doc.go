/*
Package edit contains the building blocks shared by the leadsheet and the
arrangement stores for making changes reversible and vetoable.

Every mutating store operation produces an Edit, which can undo and redo the
change, and hands it to the registered Sinks before the change listeners are
notified. Authorizers may reject a proposed change by returning a VetoError.
History is a Sink that groups the edits of one user action into a Compound,
and keeps the undo and redo stacks.
*/
package edit
