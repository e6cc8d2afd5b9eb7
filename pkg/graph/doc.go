// Package graph holds the structure of a shader graph: its nodes, the directed
// connections between their ports, and the generic types those connections
// resolve.
//
// # Core Types
//
//   - [Structure]: the mutable graph; the only component that mutates nodes
//   - [Node]: a closed union of [FunctionNode], [ExternalInputNode] and
//     [ExternalOutputNode]
//   - [Connection]: an edge from an output port to an input port
//   - [Record]: the persisted form of a node
//
// # Invariants
//
// A Structure maintains three invariants across every mutation:
//
//   - every input port has at most one incoming connection
//   - the connections form a directed acyclic graph
//   - every resolved generic variable is consistent with the concrete types
//     flowing into it
//
// [Structure.AcceptsConnection] checks the first two without mutating anything.
// [Structure.AddConnection] additionally checks types and either applies the
// connection in full or returns an error and changes nothing.
//
// # Type Resolution
//
// When a connection carries a concrete type into a generic input, the input's
// type variable is bound on the target node and the binding flows on through
// every outgoing connection whose output uses the same variable. Each binding
// counts the connections sustaining it; removing a connection decrements the
// counts it contributed to and unbinds (and propagates the unbinding of) any
// variable whose count drops to zero. Adding and then removing a connection
// restores the exact previous state.
//
// # Serialization
//
// A structure persists as a JSON object mapping node ids to records:
//
//	{
//	  "in":  {"id": "in", "type": "external-input",
//	          "external": {"ioKind": "uniform", "dataType": "float", "name": "intensity"},
//	          "outputsTo": [{"output": "value", "to": "n1", "input": "x"}]},
//	  "n1":  {"id": "n1", "type": "identity"}
//	}
//
// [FromRecords] replays the persisted connections through AddConnection, so a
// loaded structure is validated exactly like one built by hand.
//
// # Concurrency
//
// All Structure methods are safe for concurrent use. Node accessors return
// copies; nodes must not be shared between structures.
package graph
