// Package test holds small Jack-source fixtures shared by the pkg test suites, the spiritual
// successor of the teacher's internal/test random-token generator, adapted here to produce
// valid (and deliberately invalid) Jack class bodies instead of a token salad.
package test

import (
	"fmt"
	"math/rand"
	"strings"
)

// Minimal is the smallest legal class: one void function that returns immediately.
const Minimal = `class Main {
	function void main() {
		return;
	}
}`

// Arithmetic exercises every arithmetic/relational operator and a local variable.
const Arithmetic = `class Main {
	function int compute(int a, int b) {
		var int c;
		let c = (a + b) * 2 - a / b;
		if (c > 10) {
			return c;
		} else {
			return 0;
		}
	}
}`

// FieldsAndConstructor exercises static/field declarations, a constructor, and a method.
const FieldsAndConstructor = `class Point {
	field int x, y;
	static int count;

	constructor Point new(int ax, int ay) {
		let x = ax;
		let y = ay;
		let count = count + 1;
		return this;
	}

	method int getX() {
		return x;
	}

	method void dispose() {
		do Memory.deAlloc(this);
		return;
	}
}`

// ArrayUsage exercises an Array parameter and an indexed write inside a while loop; it
// allocates no array and reads no element.
const ArrayUsage = `class Main {
	function void fill(Array a, int n) {
		var int i;
		let i = 0;
		while (i < n) {
			let a[i] = i * i;
			let i = i + 1;
		}
		return;
	}
}`

// CrossClassCall exercises a constructor call and a method call on a declared variable, the
// two receiver-resolution branches of a call site.
const CrossClassCall = `class Main {
	function void main() {
		var Point p;
		let p = Point.new(1, 2);
		do p.dispose();
		return;
	}
}`

// UndeclaredVariable is invalid: "y" is never declared.
const UndeclaredVariable = `class Main {
	function void main() {
		let y = 1;
		return;
	}
}`

// MissingReturn is invalid: a non-void function has a code path without a return.
const MissingReturn = `class Main {
	function int broken() {
		if (true) {
			return 1;
		}
	}
}`

// UnreachableCode is invalid: a statement follows an unconditional return in the same block.
const UnreachableCode = `class A {
	method void f() {
		return;
		let x = 1;
	}
}`

// RandomIdentifier returns a pseudo-random, syntactically valid Jack identifier of the given
// length, always starting with a letter.
func RandomIdentifier(r *rand.Rand, length int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const alnum = letters + "0123456789"

	var b strings.Builder
	b.WriteByte(letters[r.Intn(len(letters))])
	for i := 1; i < length; i++ {
		b.WriteByte(alnum[r.Intn(len(alnum))])
	}

	return b.String()
}

// RandomClass generates a syntactically valid class with n trivial void methods, named with
// random identifiers, for exercising the parser/resolver at scale without a fixed fixture.
func RandomClass(r *rand.Rand, className string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "class %s {\n", className)

	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "\tfunction void %s() {\n\t\treturn;\n\t}\n", RandomIdentifier(r, 8))
	}

	b.WriteString("}")
	return b.String()
}
