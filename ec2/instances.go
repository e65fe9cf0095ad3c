package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// ListInstances returns every instance visible to the account in the configured
// region. It returns an empty slice when there are none.
func (m *Manager) ListInstances(ctx context.Context) ([]Instance, error) {
	return m.describe(ctx, "ec2.list_instances", "", &ec2.DescribeInstancesInput{})
}

// InstancesByState returns the instances currently in state.
func (m *Manager) InstancesByState(ctx context.Context, state State) ([]Instance, error) {
	if state == "" {
		return nil, awserrors.Invalid("ec2.instances_by_state", "", "state is required")
	}
	return m.describe(ctx, "ec2.instances_by_state", string(state), &ec2.DescribeInstancesInput{
		Filters: []types.Filter{{
			Name:   aws.String("instance-state-name"),
			Values: []string{string(state)},
		}},
	})
}

// Instance returns the instance with the given id.
// An unknown id yields an error matching errors.ErrNotFound.
func (m *Manager) Instance(ctx context.Context, id string) (*Instance, error) {
	const op = "ec2.describe_instance"
	if id == "" {
		return nil, awserrors.Invalid(op, "", "instance id is required")
	}

	out, err := m.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		return nil, m.fail(ctx, op, id, err)
	}
	for _, r := range out.Reservations {
		if len(r.Instances) > 0 {
			inst := fromSDK(r.Instances[0])
			return &inst, nil
		}
	}
	return nil, m.fail(ctx, op, id, awserrors.NewError(op, awserrors.ErrNotFound).WithResource(id))
}

// InstanceByName returns the first instance whose Name tag equals name.
func (m *Manager) InstanceByName(ctx context.Context, name string) (*Instance, error) {
	const op = "ec2.instance_by_name"
	if name == "" {
		return nil, awserrors.Invalid(op, "", "instance name is required")
	}

	found, err := m.describe(ctx, op, name, &ec2.DescribeInstancesInput{
		Filters: []types.Filter{{
			Name:   aws.String("tag:Name"),
			Values: []string{name},
		}},
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, awserrors.NewError(op, awserrors.ErrNotFound).WithResource(name)
	}
	return &found[0], nil
}

// InstanceIDByName returns the id of the first instance whose Name tag equals name.
func (m *Manager) InstanceIDByName(ctx context.Context, name string) (string, error) {
	inst, err := m.InstanceByName(ctx, name)
	if err != nil {
		return "", err
	}
	return inst.ID, nil
}

// PublicIP returns the instance's public IPv4 address, or NoPublicIP when it
// has none (still pending, or in a subnet that assigns no public address).
func (m *Manager) PublicIP(ctx context.Context, id string) (string, error) {
	inst, err := m.Instance(ctx, id)
	if err != nil {
		return "", err
	}
	if inst.PublicIP == NoPublicIP {
		m.info(ctx, "instance has no public ip", "instance_id", id)
	}
	return inst.PublicIP, nil
}

func (m *Manager) describe(ctx context.Context, op, resource string, input *ec2.DescribeInstancesInput) ([]Instance, error) {
	instances := []Instance{}
	paginator := ec2.NewDescribeInstancesPaginator(m.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, m.fail(ctx, op, resource, err)
		}
		for _, r := range page.Reservations {
			for _, in := range r.Instances {
				instances = append(instances, fromSDK(in))
			}
		}
	}
	return instances, nil
}

func fromSDK(in types.Instance) Instance {
	inst := Instance{
		ID:         aws.ToString(in.InstanceId),
		Type:       string(in.InstanceType),
		PublicIP:   aws.ToString(in.PublicIpAddress),
		PrivateIP:  aws.ToString(in.PrivateIpAddress),
		LaunchTime: aws.ToTime(in.LaunchTime),
	}
	if in.State != nil {
		inst.State = State(in.State.Name)
	}
	for _, tag := range in.Tags {
		if aws.ToString(tag.Key) == "Name" {
			inst.Name = aws.ToString(tag.Value)
			break
		}
	}
	return inst
}
