package simulation

import (
	"errors"
	"fmt"

	"github.com/lao-tseu-is-alive/go-boids-target/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ErrUnexpectedMessage is returned when a decoder receives another message type.
var ErrUnexpectedMessage = errors.New("unexpected message")

// Message names of the boids.v1 protocol understood by FlockActor.
const (
	TickName        protoreflect.FullName = "boids.v1.Tick"
	SetTargetName   protoreflect.FullName = "boids.v1.SetTarget"
	ClearTargetName protoreflect.FullName = "boids.v1.ClearTarget"
	ResetName       protoreflect.FullName = "boids.v1.Reset"
	GetSnapshotName protoreflect.FullName = "boids.v1.GetSnapshot"
	SnapshotName    protoreflect.FullName = "boids.v1.Snapshot"
	AgentStateName  protoreflect.FullName = "boids.v1.AgentState"
)

// The protocol is small and stable, so the file descriptor is declared
// here and messages are built with dynamicpb instead of generated code.
//
//	message Tick {}
//	message SetTarget { double x = 1; double y = 2; }
//	message ClearTarget {}
//	message Reset {}
//	message GetSnapshot {}
//	message AgentState { double x = 1; double y = 2; double vx = 3; double vy = 4; double heading = 5; }
//	message Snapshot {
//	  uint64 frame = 1;
//	  repeated AgentState agents = 2;
//	  bool has_target = 3;
//	  double target_x = 4;
//	  double target_y = 5;
//	}
var protocol = mustBuildProtocol()

type protocolDescriptors struct {
	tick, setTarget, clearTarget, reset, getSnapshot, snapshot, agentState protoreflect.MessageDescriptor
}

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func mustBuildProtocol() protocolDescriptors {
	const double = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE

	agents := field("agents", 2, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	agents.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	agents.TypeName = proto.String("." + string(AgentStateName))

	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("boids/v1/flock.proto"),
		Package: proto.String("boids.v1"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("Tick"),
			message("SetTarget", field("x", 1, double), field("y", 2, double)),
			message("ClearTarget"),
			message("Reset"),
			message("GetSnapshot"),
			message("AgentState",
				field("x", 1, double),
				field("y", 2, double),
				field("vx", 3, double),
				field("vy", 4, double),
				field("heading", 5, double),
			),
			message("Snapshot",
				field("frame", 1, descriptorpb.FieldDescriptorProto_TYPE_UINT64),
				agents,
				field("has_target", 3, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
				field("target_x", 4, double),
				field("target_y", 5, double),
			),
		},
	}

	fd, err := protodesc.NewFile(file, new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("invalid boids.v1 descriptor: %v", err))
	}
	msgs := fd.Messages()
	return protocolDescriptors{
		tick:        msgs.ByName("Tick"),
		setTarget:   msgs.ByName("SetTarget"),
		clearTarget: msgs.ByName("ClearTarget"),
		reset:       msgs.ByName("Reset"),
		getSnapshot: msgs.ByName("GetSnapshot"),
		snapshot:    msgs.ByName("Snapshot"),
		agentState:  msgs.ByName("AgentState"),
	}
}

// MessageName returns the fully qualified protobuf name of m.
func MessageName(m proto.Message) protoreflect.FullName {
	return m.ProtoReflect().Descriptor().FullName()
}

// NewTick asks the flock to advance one step.
func NewTick() proto.Message { return dynamicpb.NewMessage(protocol.tick) }

// NewClearTarget removes the target before the next step.
func NewClearTarget() proto.Message { return dynamicpb.NewMessage(protocol.clearTarget) }

// NewReset regenerates the population.
func NewReset() proto.Message { return dynamicpb.NewMessage(protocol.reset) }

// NewGetSnapshot asks for the current state; the reply is a Snapshot.
func NewGetSnapshot() proto.Message { return dynamicpb.NewMessage(protocol.getSnapshot) }

// NewSetTarget moves the shared target before the next step.
func NewSetTarget(x, y float64) proto.Message {
	m := dynamicpb.NewMessage(protocol.setTarget)
	setFloat(m, "x", x)
	setFloat(m, "y", y)
	return m
}

// TargetFromMessage decodes a SetTarget message.
func TargetFromMessage(m proto.Message) (geometry.Vector2D, error) {
	r := m.ProtoReflect()
	if name := r.Descriptor().FullName(); name != SetTargetName {
		return geometry.Vector2D{}, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedMessage, name, SetTargetName)
	}
	return geometry.Vector2D{X: getFloat(r, "x"), Y: getFloat(r, "y")}, nil
}

// Snapshot is the decoded form of a boids.v1.Snapshot message.
type Snapshot struct {
	Frame     uint64
	Agents    []flock.Agent
	Target    geometry.Vector2D
	HasTarget bool
}

// NewSnapshot encodes the state of f.
func NewSnapshot(f *flock.Flock) proto.Message {
	m := dynamicpb.NewMessage(protocol.snapshot)
	fields := protocol.snapshot.Fields()

	m.Set(fields.ByName("frame"), protoreflect.ValueOfUint64(f.Frame()))
	list := m.Mutable(fields.ByName("agents")).List()
	for _, a := range f.Agents() {
		v := list.NewElement()
		e := v.Message()
		setFloat(e, "x", a.Pos.X)
		setFloat(e, "y", a.Pos.Y)
		setFloat(e, "vx", a.Vel.X)
		setFloat(e, "vy", a.Vel.Y)
		setFloat(e, "heading", a.Heading)
		list.Append(v)
	}
	if target, ok := f.Target(); ok {
		m.Set(fields.ByName("has_target"), protoreflect.ValueOfBool(true))
		setFloat(m, "target_x", target.X)
		setFloat(m, "target_y", target.Y)
	}
	return m
}

// SnapshotFromMessage decodes a Snapshot reply.
func SnapshotFromMessage(m proto.Message) (*Snapshot, error) {
	r := m.ProtoReflect()
	if name := r.Descriptor().FullName(); name != SnapshotName {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedMessage, name, SnapshotName)
	}
	fields := r.Descriptor().Fields()

	list := r.Get(fields.ByName("agents")).List()
	s := &Snapshot{
		Frame:     r.Get(fields.ByName("frame")).Uint(),
		Agents:    make([]flock.Agent, list.Len()),
		HasTarget: r.Get(fields.ByName("has_target")).Bool(),
		Target:    geometry.Vector2D{X: getFloat(r, "target_x"), Y: getFloat(r, "target_y")},
	}
	for i := 0; i < list.Len(); i++ {
		e := list.Get(i).Message()
		s.Agents[i] = flock.Agent{
			Pos:     geometry.Vector2D{X: getFloat(e, "x"), Y: getFloat(e, "y")},
			Vel:     geometry.Vector2D{X: getFloat(e, "vx"), Y: getFloat(e, "vy")},
			Heading: getFloat(e, "heading"),
		}
	}
	return s, nil
}

func setFloat(m protoreflect.Message, name protoreflect.Name, v float64) {
	m.Set(m.Descriptor().Fields().ByName(name), protoreflect.ValueOfFloat64(v))
}

func getFloat(m protoreflect.Message, name protoreflect.Name) float64 {
	return m.Get(m.Descriptor().Fields().ByName(name)).Float()
}
