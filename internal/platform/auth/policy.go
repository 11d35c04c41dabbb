package auth

// Action is an operation on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ResourceKind names the entity being accessed.
type ResourceKind string

const (
	ResourceAppointment ResourceKind = "appointment"
	ResourceDoctor      ResourceKind = "doctor"
	ResourceUser        ResourceKind = "user"
)

// Resource is the target of an access decision. OwnerID is the user the
// resource belongs to; zero means a collection spanning all users.
type Resource struct {
	Kind    ResourceKind
	OwnerID int64
}

// Appointment describes an appointment (or a user's appointment list)
// owned by ownerID.
func Appointment(ownerID int64) Resource {
	return Resource{Kind: ResourceAppointment, OwnerID: ownerID}
}

// Doctor describes the doctor directory.
func Doctor() Resource { return Resource{Kind: ResourceDoctor} }

// User describes the profile of userID.
func User(userID int64) Resource { return Resource{Kind: ResourceUser, OwnerID: userID} }

// CanAccess decides whether id may perform action on res. Admins may do
// anything. Doctor records are readable by everyone and writable by admins
// only. Appointments and profiles are reachable by their owner; listings
// across all users are admin-only. The doctor role carries no extra rights.
func CanAccess(id Identity, res Resource, action Action) bool {
	if res.Kind == ResourceDoctor && (action == ActionRead || action == ActionList) {
		return true
	}
	if !id.Authenticated() {
		return false
	}
	if id.IsAdmin() {
		return true
	}

	switch res.Kind {
	case ResourceAppointment, ResourceUser:
		return res.OwnerID != 0 && res.OwnerID == id.UserID
	default:
		return false
	}
}
