package cluster

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/flowcontrol"

	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
	"github.com/G-Research/resetbench/internal/resetbench/configuration"
)

func CreateKubernetesClient(kubernetesConfig *configuration.KubernetesConfiguration) (kubernetes.Interface, error) {
	if kubernetesConfig.QPS <= 0 {
		return nil, errors.WithStack(&benchmarkerrors.ErrInvalidArgument{
			Name:    "kubernetes.qps",
			Value:   kubernetesConfig.QPS,
			Message: "qps must be positive",
		})
	}
	if kubernetesConfig.Burst <= 0 {
		return nil, errors.WithStack(&benchmarkerrors.ErrInvalidArgument{
			Name:    "kubernetes.burst",
			Value:   kubernetesConfig.Burst,
			Message: "burst must be positive",
		})
	}

	config, err := loadConfig(kubernetesConfig)
	if err != nil {
		return nil, errors.Wrap(err, "loading kubernetes client configuration")
	}
	// Job creation and status polling share one limiter, bounding the load placed on the API server.
	config.RateLimiter = flowcontrol.NewTokenBucketRateLimiter(kubernetesConfig.QPS, kubernetesConfig.Burst)

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return client, nil
}

func loadConfig(kubernetesConfig *configuration.KubernetesConfiguration) (*rest.Config, error) {
	if kubernetesConfig.InClusterDeployment {
		log.Info("Running with in cluster client configuration")
		return rest.InClusterConfig()
	} else if kubernetesConfig.ConfigLocation != "" {
		log.Infof("Running with kubeconfig %s", kubernetesConfig.ConfigLocation)
		return clientcmd.BuildConfigFromFlags("", kubernetesConfig.ConfigLocation)
	} else {
		log.Info("Running with default client configuration")
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		overrides := &clientcmd.ConfigOverrides{}
		return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	}
}
