// Package nodetype describes the types of nodes a shader graph can contain.
//
// A [Definition] lists the ordered input and output ports of a node type, a body
// template and default values for the defines the body refers to. Definitions are
// immutable once registered: graphs and the code generator only read them through
// the [Registry] interface, which callers pass explicitly to every component that
// needs type lookups.
//
// # Generic Ports
//
// A port whose type is a type variable is generic. Type variables are written with
// a leading upper case letter (T, Vec) so they cannot collide with concrete shading
// types, which are lower case (float, vec3, sampler2D). A generic variable is
// resolved per node instance from the concrete types connected to it; see the
// graph package.
package nodetype
