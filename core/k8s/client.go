package k8s

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/AgbodesiImoagene/coingro-controller/core/coingro"
	"github.com/AgbodesiImoagene/coingro-controller/core/metrics"
)

// Instance is the controller's view of a bot pod.
type Instance struct {
	// Name is the pod name (equal to the bot ID).
	Name string
	// Phase is the pod phase reported by Kubernetes.
	Phase string
}

// Running reports whether the pod is in the Running phase.
func (i Instance) Running() bool {
	return i.Phase == string(corev1.PodRunning)
}

// Client defines the Kubernetes operations the controller performs.
type Client interface {
	// EnsureNamespace creates the bot namespace if it does not exist.
	EnsureNamespace(ctx context.Context) error
	// GetInstance returns the pod for a bot, or nil if it does not exist.
	GetInstance(ctx context.Context, name string) (*Instance, error)
	// ListInstances lists all bot pods in the namespace.
	ListInstances(ctx context.Context) ([]Instance, error)
	// CreateInstance creates the service and pod for a bot.
	CreateInstance(ctx context.Context, name string, env map[string]string) error
	// ReplaceInstance deletes and recreates the pod for a bot, keeping the
	// service in place.
	ReplaceInstance(ctx context.Context, name string, env map[string]string) error
	// DeleteInstance deletes the pod and service for a bot.
	DeleteInstance(ctx context.Context, name string) error
}

type client struct {
	clientset kubernetes.Interface
	resources *Resources
	namespace string
}

// NewClient connects to the Kubernetes API using either in-cluster service
// account credentials or a kubeconfig file.
func NewClient(cfg Config, bot *coingro.Config) (Client, error) {
	var (
		restCfg *rest.Config
		err     error
	)
	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.Kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load kubernetes config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return NewClientWithClientset(clientset, cfg.Namespace, bot), nil
}

// NewClientWithClientset wraps an existing clientset. Used by tests with a
// fake clientset.
func NewClientWithClientset(clientset kubernetes.Interface, namespace string, bot *coingro.Config) Client {
	return &client{
		clientset: clientset,
		resources: NewResources(namespace, bot),
		namespace: namespace,
	}
}

// withRetry runs fn up to attempts times, sleeping delay between tries.
// Exhausted retries surface as a temporary error.
func withRetry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return coingro.NewTemporaryError(lastErr)
}

func (c *client) EnsureNamespace(ctx context.Context) error {
	return withRetry(ctx, 3, 10*time.Second, func() error {
		_, err := c.clientset.CoreV1().Namespaces().Get(ctx, c.namespace, metav1.GetOptions{})
		if err == nil {
			return nil
		}
		if !apierrors.IsNotFound(err) {
			return err
		}
		_, err = c.clientset.CoreV1().Namespaces().Create(ctx, c.resources.Namespace(), metav1.CreateOptions{})
		if apierrors.IsAlreadyExists(err) {
			return nil
		}
		return err
	})
}

func (c *client) GetInstance(ctx context.Context, name string) (*Instance, error) {
	pod, err := c.clientset.CoreV1().Pods(c.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pod %q: %w", name, err)
	}
	return &Instance{Name: pod.Name, Phase: string(pod.Status.Phase)}, nil
}

func (c *client) ListInstances(ctx context.Context) ([]Instance, error) {
	pods, err := c.clientset.CoreV1().Pods(c.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: "app=" + appLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}
	instances := make([]Instance, 0, len(pods.Items))
	for _, pod := range pods.Items {
		instances = append(instances, Instance{Name: pod.Name, Phase: string(pod.Status.Phase)})
	}
	return instances, nil
}

func (c *client) CreateInstance(ctx context.Context, name string, env map[string]string) error {
	if err := c.createService(ctx, name); err != nil {
		return err
	}
	if err := c.createPod(ctx, name, env); err != nil {
		return err
	}
	metrics.InstancesCreated.Inc()
	return nil
}

func (c *client) ReplaceInstance(ctx context.Context, name string, env map[string]string) error {
	if err := c.deletePod(ctx, name); err != nil {
		return err
	}
	if err := c.createPod(ctx, name, env); err != nil {
		return err
	}
	metrics.InstancesCreated.Inc()
	return nil
}

func (c *client) DeleteInstance(ctx context.Context, name string) error {
	if err := c.deletePod(ctx, name); err != nil {
		return err
	}
	if err := c.deleteService(ctx, name); err != nil {
		return err
	}
	metrics.InstancesDeleted.Inc()
	return nil
}

func (c *client) createService(ctx context.Context, name string) error {
	return withRetry(ctx, 3, time.Second, func() error {
		_, err := c.clientset.CoreV1().Services(c.namespace).Create(ctx, c.resources.Service(name), metav1.CreateOptions{})
		if apierrors.IsAlreadyExists(err) {
			return nil
		}
		return err
	})
}

func (c *client) createPod(ctx context.Context, name string, env map[string]string) error {
	return withRetry(ctx, 3, time.Second, func() error {
		_, err := c.clientset.CoreV1().Pods(c.namespace).Create(ctx, c.resources.Pod(name, env), metav1.CreateOptions{})
		return err
	})
}

func (c *client) deletePod(ctx context.Context, name string) error {
	return withRetry(ctx, 3, time.Second, func() error {
		err := c.clientset.CoreV1().Pods(c.namespace).Delete(ctx, name, metav1.DeleteOptions{})
		if apierrors.IsNotFound(err) {
			return nil
		}
		return err
	})
}

func (c *client) deleteService(ctx context.Context, name string) error {
	return withRetry(ctx, 3, time.Second, func() error {
		err := c.clientset.CoreV1().Services(c.namespace).Delete(ctx, name, metav1.DeleteOptions{})
		if apierrors.IsNotFound(err) {
			return nil
		}
		return err
	})
}
