// Package model contains the domain records of the compliance engine.
// Types here carry no persistence concerns; derived values are computed by
// methods that take "now" explicitly.
package model
