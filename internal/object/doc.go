// Package object implements the tracked-object lifecycle and the Factory
// arena that binds objects to one History.
//
// A client type embeds Base, declares its property fields and binds them in
// the init function passed to Create:
//
//	type Folder struct {
//		object.Base
//		Name  property.Value[string]
//		Files object.OwningList[*File, fileTag]
//	}
//
//	folder := object.Create(f, func(d *Folder) {
//		d.Name.Init(d, "docs")
//		d.Files.Init(d)
//	})
//
// LIFECYCLE:
//
//	Constructing -> OnCreate -> Created <-> OnDestroy -> Destroyed -> Destructing
//
// Creation and destruction are commands like any other change: Create
// stages a create status change and Destroy stages a destroy status change,
// so both can be unstaged, undone and redone. An object is finalized
// (Destructing) only when its destroy command is discarded from history, or
// when the factory is closed.
//
// CRITICAL: Destroy first resets every property, unlinks every list node
// and clears every reference pointing at the object, all through history.
// Owning variants destroy what they hold while resetting. Objects already
// tearing down ignore cascaded destroys, so ownership cycles terminate.
//
// Precondition failures panic with *invariant.Error.
package object
