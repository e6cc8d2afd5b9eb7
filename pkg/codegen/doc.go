// Package codegen schedules a shader graph and generates its source.
//
// [Sort] orders nodes so that each runs after everything feeding it, and
// [GenerateCode] turns the ordered nodes into a single main function. Values
// travel between nodes through staged variables named inp_<node>_<port>:
//
//	uniform float intensity;
//
//	void main(void) {
//		// node n1
//		float inp_n1_x;
//
//		// node in, external-input
//		{
//			float value = intensity;
//			inp_n1_x = value;
//		}
//
//		// node n1, identity
//		{
//			float result;
//			result = inp_n1_x;
//		}
//	}
//
// Body templates are executed with text/template against the node's defines
// merged over its type's defaults, so {{.FACTOR}} in a body expands to the
// FACTOR define. Generation never validates the shading language itself.
package codegen
