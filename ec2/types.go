package ec2

import (
	"errors"
	"fmt"
	"time"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// State is an instance lifecycle state as reported by EC2.
type State string

const (
	StatePending      State = "pending"
	StateRunning      State = "running"
	StateStopping     State = "stopping"
	StateStopped      State = "stopped"
	StateShuttingDown State = "shutting-down"
	StateTerminated   State = "terminated"
)

var states = []State{
	StatePending,
	StateRunning,
	StateStopping,
	StateStopped,
	StateShuttingDown,
	StateTerminated,
}

// ParseState validates s against the known lifecycle states.
func ParseState(s string) (State, error) {
	for _, st := range states {
		if string(st) == s {
			return st, nil
		}
	}
	return "", awserrors.Invalid("ec2.parse_state", s, "unknown instance state")
}

// NoPublicIP is returned by PublicIP when the instance has no public address.
const NoPublicIP = ""

// ErrWaitTimeout is returned by WaitForState when the target state was not
// observed before the timeout elapsed. It matches errors.Is(err, errors.ErrTimeout).
var ErrWaitTimeout = fmt.Errorf("instance did not reach target state: %w", awserrors.ErrTimeout)

// Instance describes one EC2 instance at the moment it was fetched.
type Instance struct {
	ID         string
	Name       string
	State      State
	Type       string
	PublicIP   string
	PrivateIP  string
	LaunchTime time.Time
}

// StateChange is the immediate acknowledgment of a start, stop or terminate request.
type StateChange struct {
	InstanceID string
	Previous   State
	Current    State
}

// LaunchSpec describes an instance to launch. Zero fields take the defaults below.
type LaunchSpec struct {
	// Name is applied as the instance's Name tag
	Name string

	// ImageID is the AMI to launch (required)
	ImageID string

	// InstanceType defaults to DefaultInstanceType
	InstanceType string

	// KeyName is the key pair to install, empty for none
	KeyName string

	// SecurityGroupIDs are attached at launch
	SecurityGroupIDs []string

	// DeviceName is the root device, default DefaultDeviceName
	DeviceName string

	// VolumeSize is the root EBS volume size in GiB, default DefaultVolumeSize
	VolumeSize int32

	// KeepVolume retains the root volume after termination
	KeepVolume bool
}

// Launch defaults.
const (
	DefaultInstanceType = "t2.micro"
	DefaultDeviceName   = "/dev/xvda"
	DefaultVolumeSize   = int32(120)
)

func (s LaunchSpec) withDefaults() LaunchSpec {
	if s.InstanceType == "" {
		s.InstanceType = DefaultInstanceType
	}
	if s.DeviceName == "" {
		s.DeviceName = DefaultDeviceName
	}
	if s.VolumeSize <= 0 {
		s.VolumeSize = DefaultVolumeSize
	}
	return s
}

// IsWaitTimeout reports whether err is a WaitForState timeout.
func IsWaitTimeout(err error) bool {
	return errors.Is(err, ErrWaitTimeout)
}
