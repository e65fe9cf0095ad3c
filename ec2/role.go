package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// AttachRole attaches an IAM role to an instance through an instance profile
// named after the role. The profile is created, and the role added to it, when
// it does not exist yet.
func (m *Manager) AttachRole(ctx context.Context, id, roleName string) error {
	const op = "ec2.attach_role"
	if id == "" || roleName == "" {
		return awserrors.Invalid(op, id, "instance id and role name are required")
	}
	if m.iam == nil {
		return awserrors.Invalid(op, id, "no IAM client configured")
	}

	role, err := m.iam.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
	if err != nil {
		return m.fail(ctx, "iam.get_role", roleName, err)
	}
	if role.Role != nil {
		m.info(ctx, "role found", "role", roleName, "arn", aws.ToString(role.Role.Arn))
	}

	profile := roleName
	if err := m.ensureInstanceProfile(ctx, profile, roleName); err != nil {
		return err
	}

	_, err = m.api.AssociateIamInstanceProfile(ctx, &ec2.AssociateIamInstanceProfileInput{
		InstanceId:         aws.String(id),
		IamInstanceProfile: &ec2types.IamInstanceProfileSpecification{Name: aws.String(profile)},
	})
	if err != nil {
		return m.fail(ctx, op, id, err)
	}
	m.info(ctx, "instance profile attached", "instance_id", id, "profile", profile)
	return nil
}

func (m *Manager) ensureInstanceProfile(ctx context.Context, profile, roleName string) error {
	_, err := m.iam.GetInstanceProfile(ctx, &iam.GetInstanceProfileInput{
		InstanceProfileName: aws.String(profile),
	})
	if err == nil {
		return nil
	}
	if !awserrors.IsNotFound(awserrors.FromAWS("iam.get_instance_profile", profile, err)) {
		return m.fail(ctx, "iam.get_instance_profile", profile, err)
	}

	if _, err := m.iam.CreateInstanceProfile(ctx, &iam.CreateInstanceProfileInput{
		InstanceProfileName: aws.String(profile),
	}); err != nil {
		return m.fail(ctx, "iam.create_instance_profile", profile, err)
	}
	if _, err := m.iam.AddRoleToInstanceProfile(ctx, &iam.AddRoleToInstanceProfileInput{
		InstanceProfileName: aws.String(profile),
		RoleName:            aws.String(roleName),
	}); err != nil {
		return m.fail(ctx, "iam.add_role_to_instance_profile", profile, err)
	}
	m.info(ctx, "instance profile created", "profile", profile, "role", roleName)
	return nil
}
