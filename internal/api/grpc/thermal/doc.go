// Package thermal implements the gRPC transport of the node.
//
// ThermalService is registered from a hand-written service descriptor whose
// messages are protobuf well-known types (Empty, Struct, ListValue), so no
// code generation step is needed and any gRPC client can call it with the
// standard descriptors. The package also provides the typed client used by
// thermal-probe.
package thermal
