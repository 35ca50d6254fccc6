package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/equivariant/internal/activation"
	"github.com/born-ml/equivariant/internal/autodiff"
	"github.com/born-ml/equivariant/internal/gradient"
	"github.com/born-ml/equivariant/internal/irreps"
	"github.com/born-ml/equivariant/internal/s2grid"
	"github.com/born-ml/equivariant/internal/tensor"
)

func newRoundtripCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roundtrip",
		Short: "Map random coefficients to the sphere grid and back",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := s2grid.ParseQuadrature(a.v.GetString("quadrature"))
			if err != nil {
				return err
			}
			lmax := a.v.GetInt("lmax")
			resBeta, resAlpha := a.v.GetInt("res-beta"), a.v.GetInt("res-alpha")
			pVal, pArg := a.v.GetInt("p-val"), a.v.GetInt("p-arg")
			fourier := a.v.GetBool("fourier")
			seed := a.v.GetUint64("seed")

			irs, err := irreps.SphericalHarmonics(lmax, pVal, pArg)
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, seed))
			flat := tensor.Zeros(tensor.Shape{a.v.GetInt("batch"), irs.Dim()})
			for i := range flat.Data() {
				flat.Data()[i] = rng.Float64()
			}
			x, err := irreps.FromArray(irs, flat)
			if err != nil {
				return err
			}

			start := time.Now()
			s, err := s2grid.To(x, resBeta, resAlpha, q, !fourier)
			if err != nil {
				return err
			}
			a.logger.Debug("forward transform", "irreps", irs, "shape", s.Shape(), "elapsed", time.Since(start))

			start = time.Now()
			y, err := s2grid.From(s, lmax, pVal, pArg, q, !fourier)
			if err != nil {
				return err
			}
			a.logger.Debug("inverse transform", "irreps", y.Irreps(), "elapsed", time.Since(start))

			diff := y.Concat().Data()
			floats.Sub(diff, flat.Data())
			fmt.Fprintf(cmd.OutOrStdout(), "irreps:        %s\n", irs)
			fmt.Fprintf(cmd.OutOrStdout(), "signal shape:  %v\n", s.Shape())
			fmt.Fprintf(cmd.OutOrStdout(), "max abs error: %.3e\n", floats.Norm(diff, math.Inf(1)))
			return nil
		},
	}
	f := cmd.Flags()
	f.Int("lmax", 10, "largest degree")
	f.Int("res-beta", 30, "colatitude resolution")
	f.Int("res-alpha", 51, "longitude resolution")
	f.String("quadrature", string(s2grid.Soft), "colatitude quadrature: soft or gausslegendre")
	f.Int("p-val", 1, "parity of degree 0")
	f.Int("p-arg", -1, "parity factor per degree")
	f.Bool("fourier", false, "stay in the longitude Fourier domain")
	f.Uint64("seed", 0, "random seed for the coefficients")
	f.Int("batch", 1, "number of coefficient vectors")
	return cmd
}

func newGridCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the colatitude nodes and weights of a quadrature",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := s2grid.ParseQuadrature(a.v.GetString("quadrature"))
			if err != nil {
				return err
			}
			resBeta := a.v.GetInt("res-beta")
			betas, _, weights, err := s2grid.Grid(resBeta, 1, q)
			if err != nil {
				return err
			}
			if lmax := a.v.GetInt("lmax"); lmax >= 0 && resBeta < q.MinResBeta(lmax) {
				a.logger.Warn("resolution too small for exact transforms",
					"quadrature", q, "res_beta", resBeta, "lmax", lmax, "need", q.MinResBeta(lmax))
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "i\tbeta\tcos(beta)\tweight")
			for i := range betas {
				fmt.Fprintf(w, "%d\t%.12f\t%+.12f\t%.12f\n", i, betas[i], math.Cos(betas[i]), weights[i])
			}
			fmt.Fprintf(w, "\tsum\t\t%.12f\n", floats.Sum(weights))
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.Int("res-beta", 10, "colatitude resolution")
	f.String("quadrature", string(s2grid.GaussLegendre), "colatitude quadrature: soft or gausslegendre")
	f.Int("lmax", -1, "warn when the resolution cannot resolve this degree")
	return cmd
}

func newActivationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activation",
		Short: "Print the output irreps of an activation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			irs, err := irreps.Parse(a.v.GetString("irreps"))
			if err != nil {
				return err
			}
			names := strings.Split(a.v.GetString("act"), ",")
			acts := make([]activation.Func, len(names))
			for i, name := range names {
				if acts[i], err = activation.Lookup(strings.TrimSpace(name)); err != nil {
					return err
				}
			}

			act, err := activation.New(irs, acts)
			if err != nil {
				return err
			}
			a.logger.Info("activation built", "irreps_in", act.IrrepsIn(), "irreps_out", act.IrrepsOut())
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", act.IrrepsIn(), act.IrrepsOut())
			return nil
		},
	}
	f := cmd.Flags()
	f.String("irreps", "0e+0o+1o", "input irreps")
	f.String("act", "silu,tanh,none", "comma-separated activations, one per irrep: "+strings.Join(activation.Names(), ", "))
	return cmd
}

func newGradCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grad",
		Short: "Print the irreps of the gradient of the identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			irs, err := irreps.Parse(a.v.GetString("irreps"))
			if err != nil {
				return err
			}

			var diff autodiff.Differentiator
			switch name := a.v.GetString("differentiator"); name {
			case "reverse":
				diff = autodiff.ReverseMode{}
			case "finite":
				diff = autodiff.FiniteDifference{}
			default:
				return errors.Errorf("unknown differentiator %q, want reverse or finite", name)
			}

			g := gradient.Grad(func(_ tensor.Backend, x *irreps.Array) (*irreps.Array, error) {
				return x, nil
			}, gradient.WithDifferentiator(diff))

			y, err := g(irreps.Zeros(irs, tensor.Shape{}))
			if err != nil {
				return err
			}
			a.logger.Debug("gradient computed", "blocks", y.Len(), "dim", y.Irreps().Dim())
			fmt.Fprintln(cmd.OutOrStdout(), y.Irreps())
			return nil
		},
	}
	f := cmd.Flags()
	f.String("irreps", "1o", "input irreps")
	f.String("differentiator", "reverse", "jacobian engine: reverse or finite")
	return cmd
}
