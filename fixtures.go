package main

func loadFixtures() error {
	_, b, err := bootstrap()
	if err != nil {
		return err
	}

	return b.LoadFixtures()
}
