package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// LaunchInstance launches a single instance from spec and tags it with its name.
// It returns once RunInstances has acknowledged; the instance is usually still pending.
func (m *Manager) LaunchInstance(ctx context.Context, spec LaunchSpec) (string, error) {
	const op = "ec2.launch_instance"
	if spec.ImageID == "" {
		return "", awserrors.Invalid(op, spec.Name, "image id is required")
	}
	if spec.Name == "" {
		return "", awserrors.Invalid(op, "", "instance name is required")
	}
	spec = spec.withDefaults()

	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(spec.ImageID),
		InstanceType: types.InstanceType(spec.InstanceType),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		BlockDeviceMappings: []types.BlockDeviceMapping{{
			DeviceName: aws.String(spec.DeviceName),
			Ebs: &types.EbsBlockDevice{
				DeleteOnTermination: aws.Bool(!spec.KeepVolume),
				VolumeSize:          aws.Int32(spec.VolumeSize),
			},
		}},
	}
	if spec.KeyName != "" {
		input.KeyName = aws.String(spec.KeyName)
	}
	if len(spec.SecurityGroupIDs) > 0 {
		input.SecurityGroupIds = spec.SecurityGroupIDs
	}

	out, err := m.api.RunInstances(ctx, input)
	if err != nil {
		return "", m.fail(ctx, op, spec.Name, err)
	}
	if len(out.Instances) == 0 {
		return "", m.fail(ctx, op, spec.Name,
			awserrors.NewError(op, awserrors.ErrNotFound).WithResource(spec.Name).WithMessage("no instance in response"))
	}
	id := aws.ToString(out.Instances[0].InstanceId)

	_, err = m.api.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{id},
		Tags:      []types.Tag{{Key: aws.String("Name"), Value: aws.String(spec.Name)}},
	})
	if err != nil {
		return id, m.fail(ctx, "ec2.tag_instance", id, err)
	}

	m.info(ctx, "instance launched", "instance_id", id, "name", spec.Name, "type", spec.InstanceType)
	return id, nil
}

// EnsureInstance returns id unchanged when it is non-empty and otherwise
// launches a new instance from spec.
func (m *Manager) EnsureInstance(ctx context.Context, id string, spec LaunchSpec) (string, error) {
	if id != "" {
		m.info(ctx, "instance already present", "instance_id", id)
		return id, nil
	}
	return m.LaunchInstance(ctx, spec)
}
