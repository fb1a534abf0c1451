package client

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/23skdu/longbow-scout/internal/diag"
)

// tensorSlots is the fixed width of the tensor column: the proof tensor is
// always 2x3.
const tensorSlots = 6

// ReportSchema is the Arrow schema for scout report records.
var ReportSchema = arrow.NewSchema(
	[]arrow.Field{
		{Name: "hostname", Type: arrow.BinaryTypes.String},
		{Name: "version", Type: arrow.BinaryTypes.String},
		{Name: "cuda_available", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "device_count", Type: arrow.PrimitiveTypes.Int32},
		{Name: "elapsed_ms", Type: arrow.PrimitiveTypes.Int64},
		{Name: "tensor", Type: arrow.FixedSizeListOf(tensorSlots, arrow.PrimitiveTypes.Float32), Nullable: true},
	},
	nil,
)

// RecordBuilder creates one-row Arrow RecordBatches from diagnostic reports.
type RecordBuilder struct {
	mem memory.Allocator
}

// NewRecordBuilder creates a new builder.
func NewRecordBuilder(mem memory.Allocator) *RecordBuilder {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &RecordBuilder{mem: mem}
}

// Build converts a report into a single-row RecordBatch. The caller owns
// the returned record and must Release it.
func (b *RecordBuilder) Build(rep *diag.Report) (arrow.RecordBatch, error) {
	hostB := array.NewStringBuilder(b.mem)
	defer hostB.Release()
	versionB := array.NewStringBuilder(b.mem)
	defer versionB.Release()
	availB := array.NewBooleanBuilder(b.mem)
	defer availB.Release()
	countB := array.NewInt32Builder(b.mem)
	defer countB.Release()
	elapsedB := array.NewInt64Builder(b.mem)
	defer elapsedB.Release()

	tensorB := array.NewFixedSizeListBuilder(b.mem, tensorSlots, arrow.PrimitiveTypes.Float32)
	defer tensorB.Release()
	valuesB := tensorB.ValueBuilder().(*array.Float32Builder)

	hostB.Append(rep.Hostname)
	versionB.Append(rep.Version)
	availB.Append(rep.CUDAAvailable)
	countB.Append(int32(rep.DeviceCount))
	elapsedB.Append(rep.ElapsedMs)

	if rep.Tensor != nil && len(rep.Tensor.Values) == tensorSlots {
		tensorB.Append(true)
		valuesB.AppendValues(rep.Tensor.Values, nil)
	} else {
		tensorB.AppendNull()
	}

	cols := []arrow.Array{
		hostB.NewArray(),
		versionB.NewArray(),
		availB.NewArray(),
		countB.NewArray(),
		elapsedB.NewArray(),
		tensorB.NewArray(),
	}
	for _, c := range cols {
		defer c.Release()
	}

	return array.NewRecordBatch(ReportSchema, cols, 1), nil
}
