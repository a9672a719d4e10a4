/*
Package tensorcanvas turns pointer gestures on a canvas of operation nodes
into a tensor computation graph.

# Overview

A Builder holds placed nodes. Each node is an operation (MatMul, ReLU,
MSE...) with input ports on its left edge and output ports on its right.
Dragging from one port and releasing on another either connects an output
to an input or selects a port for inspection. Compile then builds the
canvas into a backend graph, node by node in placement order.

# Basic Usage

	b := tensorcanvas.New(cpu.New())

	x := b.Place(op.Input, gg.Pt(0, 0))
	w := b.Place(op.Variable, gg.Pt(0, 100))
	mm := b.Place(op.MatMul, gg.Pt(200, 50))

	// Drag x's output onto the first input of mm.
	b.Dispatch(tensorcanvas.Press(b.Node(x).OutputAnchor(0)))
	b.Dispatch(tensorcanvas.Release(b.Node(mm).InputAnchor(0)))

	// Drag from mm's second input back to w's output.
	b.Dispatch(tensorcanvas.Press(b.Node(mm).InputAnchor(1)))
	b.Dispatch(tensorcanvas.Release(b.Node(w).OutputAnchor(0)))

	if err := b.Compile(ctx); err != nil {
	    log.Fatal(err)
	}
	res, err := b.Run(ctx)

# Gestures

A button press latches the port under the pointer as a drag. The next
release is paired with that drag:

	drag output, drop input   connects the output to the input
	drag input, drop output   connects the output to the input
	drag output, drop output  selects the dropped-on output
	drag input, drop input    selects the dropped-on input

Dropping onto a port without a preceding drag does nothing, and so does
connecting a node to itself. Connecting into an input that is already
connected replaces the previous connection. Pointer moves never affect
the latched drag.

# Compilation

Compile materializes Variable and Input outputs first, then builds the
remaining nodes in the order they were placed. An operation must be placed
after every node that feeds it. Failures are reported as *BuildError
wrapping ErrUnconnectedInput or ErrUnboundVariable.

# Observability

	b := tensorcanvas.New(dev,
	    tensorcanvas.WithLogger(logger),
	    tensorcanvas.WithMetrics(true),
	    tensorcanvas.WithTracing(true),
	)

# Thread Safety

Builder is not safe for concurrent use. Drive it from one goroutine.
*/
package tensorcanvas
