// Package compiler turns declarative store programs written in CUE into the
// store specs accepted by engine.New.
//
// A program declares stores with an initial state and a list of updater
// definitions, plus static values:
//
//	stores: counter: {
//		initial: 0
//		updaters: [{on: "INC", op: "add", value: 1}]
//	}
//	statics: greeting: "hello"
//
// Values are restricted to the IR value model: strings, integers, booleans,
// null, lists, and structs. Floats are rejected at compile time.
package compiler
