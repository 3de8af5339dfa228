package wire

import (
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/snapshot"
)

// Round1 rounds v to one decimal digit.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatFrame renders 768 values, row-major, one decimal, comma separated.
func FormatFrame(frame *thermal.Frame) string {
	var b strings.Builder

	// "-12.3," is the widest common cell.
	b.Grow(thermal.Pixels * 6)

	for i, v := range frame {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteString(strconv.FormatFloat(v, 'f', 1, 64))
	}

	return b.String()
}

// FormatStats renders "avg,max,min" with one decimal.
func FormatStats(stats thermal.Stats) string {
	return strconv.FormatFloat(stats.Average, 'f', 1, 64) + "," +
		strconv.FormatFloat(stats.Maximum, 'f', 1, 64) + "," +
		strconv.FormatFloat(stats.Minimum, 'f', 1, 64)
}

// FrameList converts a frame to a ListValue of rounded numbers.
func FrameList(frame *thermal.Frame) *structpb.ListValue {
	values := make([]*structpb.Value, len(frame))
	for i, v := range frame {
		values[i] = structpb.NewNumberValue(Round1(v))
	}

	return &structpb.ListValue{Values: values}
}

// ListFrame converts a ListValue back to a frame. Missing cells stay zero.
func ListFrame(list *structpb.ListValue) thermal.Frame {
	var frame thermal.Frame

	for i, v := range list.GetValues() {
		if i >= thermal.Pixels {
			break
		}

		frame[i] = v.GetNumberValue()
	}

	return frame
}

// StatsStruct converts stats to {"average","maximum","minimum"}.
func StatsStruct(stats thermal.Stats) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"average": structpb.NewNumberValue(Round1(stats.Average)),
		"maximum": structpb.NewNumberValue(Round1(stats.Maximum)),
		"minimum": structpb.NewNumberValue(Round1(stats.Minimum)),
	}}
}

// StructStats reads a struct produced by StatsStruct.
func StructStats(s *structpb.Struct) thermal.Stats {
	fields := s.GetFields()

	return thermal.Stats{
		Average: fields["average"].GetNumberValue(),
		Maximum: fields["maximum"].GetNumberValue(),
		Minimum: fields["minimum"].GetNumberValue(),
	}
}

// AlarmStruct converts an alarm state.
func AlarmStruct(state alarm.State) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"active": structpb.NewBoolValue(state.Active()),
		"phase":  structpb.NewStringValue(state.Phase.String()),
		"steps":  structpb.NewNumberValue(float64(state.Steps)),
	}}
}

// HealthStruct converts a health report together with the node status.
func HealthStruct(health snapshot.Health, status snapshot.Status) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"samples":         structpb.NewNumberValue(float64(health.Samples)),
		"failures":        structpb.NewNumberValue(float64(health.Failures)),
		"stale":           structpb.NewBoolValue(health.Stale),
		"last_sample_at":  structpb.NewStringValue(formatTime(health.LastSampleAt)),
		"last_failure_at": structpb.NewStringValue(formatTime(health.LastFailureAt)),
		"last_error":      structpb.NewStringValue(health.LastError),
		"mode":            structpb.NewStringValue(status.Mode.String()),
		"alarm":           structpb.NewStructValue(AlarmStruct(status.Alarm)),
	}}
}

// SnapshotStruct converts everything published at once.
func SnapshotStruct(s snapshot.Snapshot) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"columns": structpb.NewNumberValue(thermal.Columns),
		"rows":    structpb.NewNumberValue(thermal.Rows),
		"frame":   structpb.NewListValue(FrameList(&s.Frame)),
		"stats":   structpb.NewStructValue(StatsStruct(s.Stats)),
		"health":  structpb.NewStructValue(HealthStruct(s.Health, s.Status)),
	}}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339Nano)
}
