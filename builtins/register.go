// Package builtins populates a realm with the standard global objects.
package builtins

import (
	"github.com/example/jscore/runtime"
)

// Setup installs every builtin into r. The realm's intrinsic prototypes
// already exist; Setup gives them their methods and binds the
// constructors on the global object.
func Setup(r *runtime.Realm) {
	// 1. Iterator prototypes (array methods hand out array iterators)
	installIterators(r)

	// 2. Object and Function
	Install(r, objectDefinition(r))
	installFunction(r)

	// 3. Array and String
	installArray(r)
	installString(r)

	// 4. Primitive wrappers
	Install(r, numberDefinition(r))
	Install(r, booleanDefinition(r))
	Install(r, symbolDefinition(r))

	// 5. Error family
	installErrors(r)

	// 6. RegExp
	Install(r, regexpDefinition(r))

	// 7. Map, Set, WeakMap, WeakSet
	installCollections(r)

	// 8. Namespaces
	Install(r, mathDefinition())
	Install(r, jsonDefinition())
	Install(r, reflectDefinition())
	Install(r, consoleDefinition())

	// 9. Global functions and values
	installGlobals(r)
}
