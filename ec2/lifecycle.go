package ec2

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// StartInstance requests that a stopped instance start.
// It issues one StartInstances call and returns without waiting.
func (m *Manager) StartInstance(ctx context.Context, id string) (*StateChange, error) {
	const op = "ec2.start_instance"
	if id == "" {
		return nil, awserrors.Invalid(op, "", "instance id is required")
	}

	out, err := m.api.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: []string{id}})
	if err != nil {
		return nil, m.fail(ctx, op, id, err)
	}
	change := stateChange(id, out.StartingInstances)
	m.info(ctx, "start requested", "instance_id", id, "state", string(change.Current))
	return change, nil
}

// StopInstance requests that a running instance stop.
// It issues one StopInstances call and returns without waiting.
func (m *Manager) StopInstance(ctx context.Context, id string) (*StateChange, error) {
	const op = "ec2.stop_instance"
	if id == "" {
		return nil, awserrors.Invalid(op, "", "instance id is required")
	}

	out, err := m.api.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: []string{id}})
	if err != nil {
		return nil, m.fail(ctx, op, id, err)
	}
	change := stateChange(id, out.StoppingInstances)
	m.info(ctx, "stop requested", "instance_id", id, "state", string(change.Current))
	return change, nil
}

// TerminateInstance requests that an instance be terminated.
// It issues one TerminateInstances call and returns without waiting.
func (m *Manager) TerminateInstance(ctx context.Context, id string) (*StateChange, error) {
	const op = "ec2.terminate_instance"
	if id == "" {
		return nil, awserrors.Invalid(op, "", "instance id is required")
	}

	out, err := m.api.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: []string{id}})
	if err != nil {
		return nil, m.fail(ctx, op, id, err)
	}
	change := stateChange(id, out.TerminatingInstances)
	m.info(ctx, "terminate requested", "instance_id", id, "state", string(change.Current))
	return change, nil
}

func stateChange(id string, changes []types.InstanceStateChange) *StateChange {
	result := &StateChange{InstanceID: id}
	for _, c := range changes {
		if aws.ToString(c.InstanceId) != id {
			continue
		}
		if c.PreviousState != nil {
			result.Previous = State(c.PreviousState.Name)
		}
		if c.CurrentState != nil {
			result.Current = State(c.CurrentState.Name)
		}
		break
	}
	return result
}

// WaitForState polls the instance at the configured interval until it reports
// target or timeout elapses. Elapsed time advances by one interval per poll, so
// a timeout of zero or less returns ErrWaitTimeout without polling.
//
// A failed poll is returned immediately and is not retried. Cancelling ctx
// interrupts the sleep between polls.
func (m *Manager) WaitForState(ctx context.Context, id string, target State, timeout time.Duration) error {
	const op = "ec2.wait_for_state"
	if id == "" {
		return awserrors.Invalid(op, "", "instance id is required")
	}
	if target == "" {
		return awserrors.Invalid(op, id, "target state is required")
	}

	var (
		elapsed time.Duration
		last    State
	)
	for elapsed < timeout {
		inst, err := m.Instance(ctx, id)
		if err != nil {
			return err
		}
		last = inst.State
		if last == target {
			m.info(ctx, "instance reached state", "instance_id", id, "state", string(target))
			return nil
		}

		if err := m.sleep(ctx, m.pollInterval); err != nil {
			return m.fail(ctx, op, id, err)
		}
		elapsed += m.pollInterval
	}

	if m.logger != nil {
		m.logger.WarnContext(ctx, "timed out waiting for instance state",
			"instance_id", id,
			"target", string(target),
			"last", string(last),
			"timeout", timeout)
	}
	return fmt.Errorf("%s %s: waited %s for %q: %w", op, id, timeout, target, ErrWaitTimeout)
}
