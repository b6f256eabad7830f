package k8s

import (
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
)

const (
	appLabel     = "coingro-bot"
	creatorLabel = "coingro-controller"

	apiPortName   = "api-server-port"
	containerName = "coingro-container"
	dataVolume    = "coingro-user-data"
	dataMountPath = "/coingro/user_data/"

	// BotIDEnvVar is injected into every bot so it knows its own identity.
	BotIDEnvVar = "CG_BOT_ID"
)

// Resources builds the Kubernetes objects that make up a bot instance.
type Resources struct {
	namespace string
	bot       *coingro.Config
}

// NewResources creates a resource builder for the given namespace and bot
// settings.
func NewResources(namespace string, bot *coingro.Config) *Resources {
	return &Resources{namespace: namespace, bot: bot}
}

func (r *Resources) labels(name string) map[string]string {
	return map[string]string{
		"name":    name,
		"run":     name,
		"app":     appLabel,
		"creator": creatorLabel,
	}
}

// Namespace returns the namespace object bot instances live in.
func (r *Resources) Namespace() *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name: r.namespace,
			Labels: map[string]string{
				"name":    r.namespace,
				"creator": creatorLabel,
			},
		},
	}
}

// Service returns the service exposing a bot's REST API inside the cluster.
// Port 80 maps onto the bot's API port so bots are reachable as
// http://<name>/.
func (r *Resources) Service(name string) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: r.namespace,
			Labels:    r.labels(name),
		},
		Spec: corev1.ServiceSpec{
			Selector: map[string]string{
				"run":     name,
				"creator": creatorLabel,
			},
			Ports: []corev1.ServicePort{
				{
					Name:       apiPortName,
					Protocol:   corev1.ProtocolTCP,
					Port:       80,
					TargetPort: intstr.FromInt(r.bot.APIPort),
				},
			},
		},
	}
}

// Pod returns the pod running a bot instance. Extra env vars override the
// configured bot defaults; the bot's own ID is always injected.
func (r *Resources) Pod(name string, env map[string]string) *corev1.Pod {
	merged := make(map[string]string, len(r.bot.Env)+len(env))
	for k, v := range r.bot.Env {
		merged[k] = v
	}
	for k, v := range env {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	// Deterministic env ordering keeps pod specs comparable.
	sort.Strings(keys)

	envList := make([]corev1.EnvVar, 0, len(keys)+1)
	for _, k := range keys {
		envList = append(envList, corev1.EnvVar{Name: k, Value: merged[k]})
	}
	envList = append(envList, corev1.EnvVar{Name: BotIDEnvVar, Value: name})

	probeAction := corev1.ProbeHandler{
		HTTPGet: &corev1.HTTPGetAction{
			Path: "/api/v1/ping",
			Port: intstr.FromInt(r.bot.APIPort),
		},
	}

	container := corev1.Container{
		Name:  containerName,
		Image: r.bot.Image,
		Env:   envList,
		Ports: []corev1.ContainerPort{
			{Name: apiPortName, ContainerPort: int32(r.bot.APIPort)},
		},
		StartupProbe: &corev1.Probe{
			ProbeHandler:     probeAction,
			FailureThreshold: 10,
			PeriodSeconds:    3,
		},
		LivenessProbe: &corev1.Probe{
			ProbeHandler:     probeAction,
			FailureThreshold: 1,
			PeriodSeconds:    60,
		},
		VolumeMounts: []corev1.VolumeMount{
			{Name: dataVolume, MountPath: dataMountPath},
		},
	}

	var pullSecrets []corev1.LocalObjectReference
	if r.bot.ImagePullSecret != "" {
		pullSecrets = append(pullSecrets, corev1.LocalObjectReference{Name: r.bot.ImagePullSecret})
	}

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: r.namespace,
			Labels:    r.labels(name),
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{container},
			Volumes: []corev1.Volume{
				{
					Name: dataVolume,
					VolumeSource: corev1.VolumeSource{
						PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
							ClaimName: r.bot.DataPVCClaim,
						},
					},
				},
			},
			ImagePullSecrets: pullSecrets,
		},
	}
}
