package functions

import "context"

func (i *Invoker) Signup(ctx context.Context, r SignupRequest) (SignupResponse, error) {
	return Call[SignupResponse](ctx, i, r)
}

func (i *Invoker) VerifyEmail(ctx context.Context, r VerifyEmailRequest) (VerifyEmailResponse, error) {
	return Call[VerifyEmailResponse](ctx, i, r)
}

func (i *Invoker) ResendVerification(ctx context.Context, r ResendVerificationRequest) (Ack, error) {
	return Call[Ack](ctx, i, r)
}

func (i *Invoker) WelcomeEmail(ctx context.Context, r WelcomeEmailRequest) (Ack, error) {
	return Call[Ack](ctx, i, r)
}

func (i *Invoker) SearchBrands(ctx context.Context, r BrandSearchRequest) (BrandSearchResponse, error) {
	return Call[BrandSearchResponse](ctx, i, r)
}

func (i *Invoker) FetchBrandLogo(ctx context.Context, r BrandLogoRequest) (BrandLogoResponse, error) {
	return Call[BrandLogoResponse](ctx, i, r)
}

func (i *Invoker) SubmitTell(ctx context.Context, r SubmitTellRequest) (SubmitTellResponse, error) {
	return Call[SubmitTellResponse](ctx, i, r)
}

func (i *Invoker) SubmitBrandClaim(ctx context.Context, r BrandClaimRequest) (BrandClaimResponse, error) {
	return Call[BrandClaimResponse](ctx, i, r)
}

func (i *Invoker) Awards(ctx context.Context, a AwardsAction) (AwardsResponse, error) {
	return Call[AwardsResponse](ctx, i, a)
}

func (i *Invoker) Trending(ctx context.Context, a TrendingAction) (TrendingResponse, error) {
	return Call[TrendingResponse](ctx, i, a)
}

func (i *Invoker) Resolution(ctx context.Context, a ResolutionAction) (ResolutionResponse, error) {
	return Call[ResolutionResponse](ctx, i, a)
}

func (i *Invoker) VerifyPayment(ctx context.Context, r VerifyPayment) (PaymentResponse, error) {
	return Call[PaymentResponse](ctx, i, r)
}
