/*
Package expr evaluates the expressions inside #{...} interpolations.

# Overview

expr implements a small expression language whose values are strings,
numbers, booleans, nil and lists. An Evaluator holds the variables and
functions an expression can reach and implements quasi.Evaluator, so it
plugs straight into a renderer:

	e := expr.New(expr.WithVars(map[string]any{"user": map[string]any{"name": "ada"}}))
	s, _ := quasi.Interpolated(ctx, "Hi #{ title(user.name) }", e)
	// s: "Hi Ada"

# Expression Syntax

	<expr>    := <or>
	<or>      := <and> ('or' <and>)*
	<and>     := <not> ('and' <not>)*
	<not>     := ('not' | '!') <not> | <compare>
	<compare> := <primary> [<op> <primary>]
	<op>      := '==' | '!=' | '<' | '>' | '<=' | '>=' | 'contains' | custom
	<primary> := 'string' | "string" | number | true | false | null
	           | identifier | identifier '(' [<expr> (',' <expr>)*] ')'
	           | '(' <expr> ')' | '-' <primary>

Identifiers may contain dots to reach into nested maps: user.name.
Double-quoted strings use Go escapes; single-quoted strings only
understand \' and \\.

# Operators

	==  !=     compare string forms
	<  >  <=  >=  compare numerically
	contains   substring test, or membership for lists
	and or     short-circuit, return a bool
	not !      negate truthiness

# Functions

Builtins() returns the default function table: upper, lower, trim, title,
reverse, len, join, split, default, concat, repeat, replace and quote.
Add more with WithFunc or replace the table with WithFuncs:

	e := expr.New(expr.WithFunc("shout", func(args ...any) (any, error) {
	    return strings.ToUpper(expr.Stringify(args[0])) + "!", nil
	}))

# Missing Variables

By default an undefined identifier is an error (MissingError). MissingEmpty
evaluates it to "" and MissingKeep to its own name:

	e := expr.New(expr.WithMissingAction(expr.MissingKeep))
	v, _ := e.Eval("nobody")
	// v: "nobody"

default(x, fallback) accepts an undefined first argument in every mode.

# Truthiness

  - nil: false
  - bool: the boolean value
  - string: false if empty
  - numbers: false if zero
  - lists: false if empty
  - other types: true
*/
package expr
