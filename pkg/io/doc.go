// Package io reads and writes shader graph files.
//
// # Formats
//
// JSON is the persisted record format of the graph package: an object mapping
// node ids to records.
//
//	{
//	  "in": {"id": "in", "type": "external-input",
//	         "external": {"ioKind": "uniform", "dataType": "float", "name": "intensity"},
//	         "outputsTo": [{"output": "value", "to": "n1", "input": "x"}]},
//	  "n1": {"id": "n1", "type": "identity"}
//	}
//
// HCL is meant for hand-written graphs:
//
//	input "in" {
//	  kind = "uniform"
//	  type = "float"
//	  name = "intensity"
//	}
//
//	node "n1" {
//	  type    = "scale"
//	  defines = { FACTOR = "4" }
//	}
//
//	output "color" {
//	  type = "vec4"
//	  name = "gl_FragColor"
//	}
//
//	connect {
//	  from = "in.value"
//	  to   = "n1.x"
//	}
//
// Endpoints are written node.port; the target "_" marks an unused output.
//
// # Import
//
// [Import] dispatches on the file extension. [ImportJSON] and [ImportHCL] read a
// specific format and [ReadJSON] and [ReadHCL] read from memory. Every reader
// builds the structure through AddNode and AddConnection, so imported graphs are
// validated like graphs built in code.
//
// # Export
//
// [Export], [ExportJSON] and [ExportHCL] mirror the import functions.
// [WriteJSON] and [WriteHCL] write to any io.Writer.
package io
