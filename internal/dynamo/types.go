package dynamo

// BodyID identifies a body inside an Engine. Zero is never a valid id.
type BodyID uint32

type BodyKind uint8

const (
	Dynamic BodyKind = iota
	Static
	Kinematic
)

func (k BodyKind) String() string {
	switch k {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	default:
		return "dynamic"
	}
}

type ShapeKind uint8

const (
	ShapeCuboid ShapeKind = iota
	ShapeBall
	ShapeOther
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCuboid:
		return "cuboid"
	case ShapeBall:
		return "ball"
	default:
		return "other"
	}
}

// BodyDef describes a rigid body and its single collider.
type BodyDef struct {
	Kind        BodyKind
	Position    Vec2
	Shape       ShapeKind
	HalfExtents Vec2    // cuboid
	Radius      float64 // ball
	Density     float64
}

// ShapeInfo is what debug overlays need to draw a collider.
type ShapeInfo struct {
	Kind        ShapeKind
	Center      Vec2
	HalfExtents Vec2
	Radius      float64
}

// Engine is the rigid-body physics engine the registry delegates to.
// Forces applied with ApplyForce last for exactly one Step.
type Engine interface {
	CreateBody(def BodyDef) BodyID
	DestroyBody(id BodyID) bool
	ApplyForce(id BodyID, force Vec2) bool
	ApplyImpulse(id BodyID, impulse Vec2) bool
	Step()
	Position(id BodyID) (Vec2, bool)
	Angle(id BodyID) (float64, bool)
	Velocity(id BodyID) (Vec2, bool)
	Shape(id BodyID) (ShapeInfo, bool)
}

// Visual is a node in the external display tree. The registry only
// ever writes its transform.
type Visual interface {
	SetTransform(pos Vec2, rotation float64)
}

// Role says how a body takes part in gravity.
type Role uint8

const (
	RoleSource Role = 1 << iota
	RoleReceiver

	RoleNone Role = 0
	RoleBoth      = RoleSource | RoleReceiver
)

func (r Role) IsSource() bool   { return r&RoleSource != 0 }
func (r Role) IsReceiver() bool { return r&RoleReceiver != 0 }

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleReceiver:
		return "receiver"
	case RoleBoth:
		return "source+receiver"
	default:
		return "none"
	}
}

// Configurable is implemented by components whose numeric parameters
// can be tuned at runtime.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
