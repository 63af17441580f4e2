package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	out *ssm.GetParameterOutput
	err error
	in  *ssm.GetParameterInput
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.in = in
	return f.out, f.err
}

func TestNewParamStore_NilAPI(t *testing.T) {
	_, err := NewParamStore(nil)
	require.Error(t, err)
}

func TestGetParameter_Success(t *testing.T) {
	api := &fakeSSM{out: &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(" AIza-secret \n")}}}
	ps, err := NewParamStore(api)
	require.NoError(t, err)

	v, err := ps.GetParameter(context.Background(), " /relay/gemini-api-key ")
	require.NoError(t, err)
	require.Equal(t, "AIza-secret", v)
	require.Equal(t, "/relay/gemini-api-key", aws.ToString(api.in.Name))
	require.True(t, aws.ToBool(api.in.WithDecryption))
}

func TestGetParameter_Errors(t *testing.T) {
	cases := []struct {
		name string
		api  *fakeSSM
		key  string
		want string
	}{
		{name: "empty name", api: &fakeSSM{}, key: " ", want: "name is required"},
		{name: "api error", api: &fakeSSM{err: errors.New("access denied")}, key: "/k", want: "access denied"},
		{name: "missing value", api: &fakeSSM{out: &ssm.GetParameterOutput{}}, key: "/k", want: "has no value"},
		{name: "blank value", api: &fakeSSM{out: &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String("  ")}}}, key: "/k", want: "is empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ps, err := NewParamStore(tc.api)
			require.NoError(t, err)
			_, err = ps.GetParameter(context.Background(), tc.key)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}
