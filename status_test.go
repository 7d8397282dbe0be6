package providers_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	providers "github.com/JohnPlummer/jp-go-providers"
)

var _ = Describe("Check", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	withoutEnv := func(key string, fn func()) {
		existing, had := os.LookupEnv(key)
		os.Unsetenv(key)
		defer func() {
			if had {
				os.Setenv(key, existing)
			}
		}()
		fn()
	}

	It("reports an unconfigured provider as unhealthy", func() {
		withoutEnv("MISTRAL_API_KEY", func() {
			status := providers.Check(ctx, providers.ProviderMistral)

			Expect(status.Provider).To(Equal(providers.ProviderMistral))
			Expect(status.Healthy).To(BeFalse())
			Expect(status.Error).To(ContainSubstring("MISTRAL_API_KEY"))
			Expect(status.Latency).To(BeNumerically(">", 0))
		})
	})

	It("reports an unknown identifier as unhealthy", func() {
		status := providers.Check(ctx, providers.ProviderID("made_up"))

		Expect(status.Healthy).To(BeFalse())
		Expect(status.Error).To(ContainSubstring("made_up"))
	})

	Describe("CheckAll", func() {
		It("returns one status per identifier in input order", func() {
			withoutEnv("ANTHROPIC_API_KEY", func() {
				withoutEnv("COHERE_API_KEY", func() {
					ids := []providers.ProviderID{
						providers.ProviderAnthropic,
						providers.ProviderCohere,
					}
					statuses := providers.CheckAll(ctx, ids)

					Expect(statuses).To(HaveLen(2))
					Expect(statuses[0].Provider).To(Equal(providers.ProviderAnthropic))
					Expect(statuses[1].Provider).To(Equal(providers.ProviderCohere))
					Expect(statuses[0].Healthy).To(BeFalse())
					Expect(statuses[1].Healthy).To(BeFalse())
				})
			})
		})
	})
})
