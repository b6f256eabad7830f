package k8s

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
)

func botConfig() *coingro.Config {
	return &coingro.Config{
		Image:        "coingro/coingro:1.2.3",
		Version:      "1.2.3",
		APIPort:      8080,
		APIPrefix:    "api/v1",
		InitialState: coingro.StateStopped,
		DataPVCClaim: "coingro-user-data-pvc-claim",
		Env:          map[string]string{"COINGRO__DRY_RUN": "true"},
	}
}

func TestResources_Pod(t *testing.T) {
	res := NewResources("coingro", botConfig())

	pod := res.Pod("bot-abc123", map[string]string{"COINGRO__STRATEGY": "Momentum"})

	assert.Equal(t, "bot-abc123", pod.Name)
	assert.Equal(t, "coingro", pod.Namespace)
	assert.Equal(t, "coingro-bot", pod.Labels["app"])
	assert.Equal(t, "coingro-controller", pod.Labels["creator"])

	require.Len(t, pod.Spec.Containers, 1)
	container := pod.Spec.Containers[0]
	assert.Equal(t, "coingro/coingro:1.2.3", container.Image)

	// Env is sorted with the bot ID always appended last.
	require.Len(t, container.Env, 3)
	assert.Equal(t, "COINGRO__DRY_RUN", container.Env[0].Name)
	assert.Equal(t, "COINGRO__STRATEGY", container.Env[1].Name)
	assert.Equal(t, BotIDEnvVar, container.Env[2].Name)
	assert.Equal(t, "bot-abc123", container.Env[2].Value)

	require.NotNil(t, container.StartupProbe)
	assert.Equal(t, "/api/v1/ping", container.StartupProbe.HTTPGet.Path)
	require.NotNil(t, container.LivenessProbe)
	assert.EqualValues(t, 60, container.LivenessProbe.PeriodSeconds)

	require.Len(t, pod.Spec.Volumes, 1)
	assert.Equal(t, "coingro-user-data-pvc-claim", pod.Spec.Volumes[0].PersistentVolumeClaim.ClaimName)
	assert.Empty(t, pod.Spec.ImagePullSecrets)
}

func TestResources_Pod_EnvOverride(t *testing.T) {
	cfg := botConfig()
	res := NewResources("coingro", cfg)

	pod := res.Pod("bot-abc123", map[string]string{"COINGRO__DRY_RUN": "false"})

	require.Len(t, pod.Spec.Containers[0].Env, 2)
	assert.Equal(t, "false", pod.Spec.Containers[0].Env[0].Value)
}

func TestResources_Pod_PullSecret(t *testing.T) {
	cfg := botConfig()
	cfg.ImagePullSecret = "registry-creds"
	res := NewResources("coingro", cfg)

	pod := res.Pod("bot-abc123", nil)

	require.Len(t, pod.Spec.ImagePullSecrets, 1)
	assert.Equal(t, "registry-creds", pod.Spec.ImagePullSecrets[0].Name)
}

func TestResources_Service(t *testing.T) {
	res := NewResources("coingro", botConfig())

	svc := res.Service("bot-abc123")

	assert.Equal(t, "bot-abc123", svc.Name)
	assert.Equal(t, "bot-abc123", svc.Spec.Selector["run"])
	require.Len(t, svc.Spec.Ports, 1)
	assert.EqualValues(t, 80, svc.Spec.Ports[0].Port)
	assert.Equal(t, 8080, svc.Spec.Ports[0].TargetPort.IntValue())
}

func TestResources_Namespace(t *testing.T) {
	res := NewResources("coingro", botConfig())

	ns := res.Namespace()

	assert.Equal(t, "coingro", ns.Name)
	assert.Equal(t, "coingro-controller", ns.Labels["creator"])
}
