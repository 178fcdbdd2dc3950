package environment_test

import (
	"errors"
	"io"

	"github.com/entorn-dev/entorn/pkg/descriptor"
	"github.com/entorn-dev/entorn/pkg/environment"
	"github.com/entorn-dev/entorn/pkg/resource"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
)

var _ = Describe("Environment lifecycle", func() {
	var (
		propsFs afero.Fs
		resFs   afero.Fs
	)

	write := func(fsys afero.Fs, name, content string) {
		Expect(afero.WriteFile(fsys, name, []byte(content), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		propsFs = afero.NewMemMapFs()
		resFs = afero.NewMemMapFs()
	})

	Context("a production deployment", func() {
		BeforeEach(func() {
			write(propsFs, "production.properties", "email=ops@example.com\ndb.host=db.internal\n")
			write(propsFs, "environment.properties", "email=dev@example.com\ncache.ttl=30s\n")
			write(resFs, "production/hibernate.cfg.xml", "<hibernate production/>")
			write(resFs, "log.xml", "<log default/>")
		})

		It("resolves name, properties and resources end to end", func() {
			env, err := environment.New(environment.Options{
				LookupEnv:    func(string) (string, bool) { return "production", true },
				Settings:     map[string]string{"db.host": "db.override.internal"},
				PropertiesFs: propsFs,
				ResourcesFs:  resFs,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Name()).To(Equal("PRODUCTION"))
			Expect(env.IsProduction()).To(BeTrue())
			Expect(env.IsDevelopment()).To(BeFalse())

			Expect(env.Get("email")).To(Equal("ops@example.com"))
			Expect(env.Get("cache.ttl")).To(Equal("30s"))
			Expect(env.Get("db.host")).To(Equal("db.override.internal"))
			Expect(env.GetOrDefault("timeout", "10s")).To(Equal("10s"))

			loc, err := env.Resource("/hibernate.cfg.xml")
			Expect(err).NotTo(HaveOccurred())
			Expect(loc.Scope).To(Equal(resource.ScopeEnvironment))

			f, err := loc.Open()
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = f.Close() }()
			content, err := io.ReadAll(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(Equal("<hibernate production/>"))

			loc, err = env.Resource("/log.xml")
			Expect(err).NotTo(HaveOccurred())
			Expect(loc.Scope).To(Equal(resource.ScopeDefault))
		})
	})

	Context("a descriptor-driven deployment", func() {
		It("takes the environment name and settings from the descriptor", func() {
			write(propsFs, "staging.properties", "feature.flags=on\n")

			env, err := environment.New(environment.Options{
				LookupEnv: func(string) (string, bool) { return "", false },
				Descriptor: &descriptor.Descriptor{
					Environment: "staging",
					Settings:    map[string]string{"feature.flags": "off"},
				},
				PropertiesFs: propsFs,
				ResourcesFs:  resFs,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Name()).To(Equal("STAGING"))
			Expect(env.Get("feature.flags")).To(Equal("off"))
		})
	})

	Context("binding resolution for an injection layer", func() {
		It("resolves by key, by target name and by default", func() {
			write(propsFs, "development.properties", "email=dev@example.com\n")

			env, err := environment.New(environment.Options{
				LookupEnv:    func(string) (string, bool) { return "", false },
				PropertiesFs: propsFs,
				ResourcesFs:  resFs,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(env.ResolveBinding(environment.Binding{Target: "Contact", Key: "email"})).To(Equal("dev@example.com"))
			Expect(env.ResolveBinding(environment.Binding{Target: "email"})).To(Equal("dev@example.com"))
			Expect(env.ResolveBinding(environment.Binding{Key: "absent", Default: "x", HasDefault: true})).To(Equal("x"))

			_, err = env.ResolveBinding(environment.Binding{Key: "absent"})
			var missing *environment.MissingKeyError
			Expect(errors.As(err, &missing)).To(BeTrue())
		})
	})

	Context("a malformed properties file", func() {
		It("aborts construction", func() {
			write(propsFs, "development.properties", "broken=\\u00zz\n")

			_, err := environment.New(environment.Options{
				LookupEnv:    func(string) (string, bool) { return "", false },
				PropertiesFs: propsFs,
				ResourcesFs:  resFs,
			})
			Expect(err).To(HaveOccurred())
		})
	})
})
