package ec2

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// keyFileMode restricts key material to its owner, read-only.
const keyFileMode os.FileMode = 0o400

// CreateKeyPair creates a key pair named name and writes its private key to
// <keydir>/<name>.pem, returning the file's path.
//
// The file is checked before AWS is called: if it already exists the call
// fails with errors.ErrAlreadyExists and no key pair is created. A name that
// already exists remotely fails with the API's InvalidKeyPair.Duplicate error.
func (m *Manager) CreateKeyPair(ctx context.Context, name string) (string, error) {
	const op = "ec2.create_key_pair"
	if name == "" {
		return "", awserrors.Invalid(op, "", "key pair name is required")
	}

	path := filepath.Join(m.keyDir, name+".pem")
	exists, err := m.fs.Exists(path)
	if err != nil {
		return "", awserrors.FromLocal(op, path, err)
	}
	if exists {
		return "", awserrors.NewError(op, awserrors.ErrAlreadyExists).
			WithResource(path).
			WithMessage("key file already exists")
	}

	out, err := m.api.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{KeyName: aws.String(name)})
	if err != nil {
		return "", m.fail(ctx, op, name, err)
	}

	if m.keyDir != "" {
		if err := m.fs.MkdirAll(m.keyDir, 0o700); err != nil {
			return "", awserrors.FromLocal(op, m.keyDir, err)
		}
	}
	f, err := m.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, keyFileMode)
	if err != nil {
		return "", awserrors.FromLocal(op, path, err)
	}
	if _, err := f.Write([]byte(aws.ToString(out.KeyMaterial))); err != nil {
		_ = f.Close()
		return "", awserrors.FromLocal(op, path, fmt.Errorf("write key material: %w", err))
	}
	if err := f.Close(); err != nil {
		return "", awserrors.FromLocal(op, path, err)
	}

	m.info(ctx, "key pair created",
		"key_name", name,
		"key_pair_id", aws.ToString(out.KeyPairId),
		"path", path)
	return path, nil
}
