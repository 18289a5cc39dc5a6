// Package history implements the reversible-operation log of the undoable core.
//
// A Command is a unit of reversible mutation. Commands are grouped into
// Transactions, and a History keeps committed transactions on an undo stack,
// previously undone ones on a redo stack, and one open staging transaction.
//
// FLOW:
//
//  1. A property builds a Command capturing the inverse of its mutation.
//  2. History.Stage applies it immediately and appends it to the stage.
//  3. Commit freezes the stage onto the undo stack and discards redo.
//  4. Undo/Redo replay a whole Transaction in reverse/forward order.
//
// DROP ORDER:
//
// Go has no destructors. A command that must observe its own removal from
// history implements Discarder; Transaction.Clear calls Discard on every
// command in stored order. The order is part of the contract: the discard
// of an object's destroy command is what finalizes that object.
//
// All types in this package are single-threaded. A History belongs to one
// logical thread of control.
package history
